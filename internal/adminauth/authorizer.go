// Package adminauth decides whether a chat sender may issue admin commands.
// The decision is an OPA Rego policy so deployments can swap the default
// allowlist rule for something richer without touching the bot code.
package adminauth

import (
	"context"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const policyQuery = "data.deltamarket.adminauth.allow"

// Default policy: the sender's chat ID must be on the configured allowlist.
const defaultRegoPolicy = `package deltamarket.adminauth

default allow = false

allow if {
	input.chat_id == input.admins[_]
}
`

// Authorizer evaluates the admin command policy for a sender chat ID.
type Authorizer struct {
	admins   []string
	compiler *ast.Compiler
}

// NewAuthorizer compiles the policy once. policyOverride replaces the default
// rule when non-empty; it must define data.deltamarket.adminauth.allow.
func NewAuthorizer(admins []string, policyOverride string) (*Authorizer, error) {
	policy := defaultRegoPolicy
	if policyOverride != "" {
		policy = policyOverride
	}
	compiler, err := ast.CompileModules(map[string]string{"adminauth.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("adminauth: compile policy: %w", err)
	}
	return &Authorizer{admins: admins, compiler: compiler}, nil
}

// Allow reports whether the sender may issue admin commands. Evaluation
// failures deny (fail closed) and are logged.
func (a *Authorizer) Allow(ctx context.Context, chatID string) bool {
	input := map[string]interface{}{
		"chat_id": chatID,
		"admins":  a.admins,
	}
	q := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(a.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		log.Printf("adminauth: policy eval failed for chat %s: %v", chatID, err)
		return false
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	return ok && allowed
}

// HealthCheck verifies that the compiled policy evaluates. Returns nil on success.
func (a *Authorizer) HealthCheck(ctx context.Context) error {
	q := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(a.compiler),
		rego.Input(map[string]interface{}{"chat_id": "", "admins": []string{}}),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return fmt.Errorf("adminauth: eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("adminauth: policy query returned no result")
	}
	return nil
}
