// Package gate composes the session, permission and consent checks in
// front of the storage collaborator. Every inbound operation call passes,
// in order: session validity, sliding refresh, capability check, consent
// check (destructive operations only), then delegation.
package gate

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-dbgate/auth"
	"github.com/jrsteele09/go-dbgate/consent"
	"github.com/jrsteele09/go-dbgate/storage"
)

// DeniedAuthenticationRequired is returned when no valid session backs the
// call; recoverable by authenticating (again).
const DeniedAuthenticationRequired = "authentication required: call authenticate first"

// DeniedInsufficientPermissions formats the denial for a valid session
// lacking the operation's capability.
func DeniedInsufficientPermissions(operation string) string {
	return fmt.Sprintf("insufficient permissions for %s", operation)
}

// DeniedConsentRequired formats the denial for a destructive operation
// without a prior grant, naming the remediation.
func DeniedConsentRequired(operation string) string {
	return fmt.Sprintf("consent required for %s: call grant_consent first", operation)
}

// Request carries the parameters of a named operation call. Fields are
// read per operation; unused fields are ignored.
type Request struct {
	Table   string               `json:"table,omitempty"`
	Row     map[string]any       `json:"row,omitempty"`
	Changes map[string]any       `json:"changes,omitempty"`
	Filter  map[string]any       `json:"filter,omitempty"`
	Limit   *int                 `json:"limit,omitempty"`
	OrderBy string               `json:"order_by,omitempty"`
	Schema  *storage.TableSchema `json:"schema,omitempty"`
}

// Result is the outcome of a gated call: either a payload or a denial
// message, never both. Errors are reported separately so callers can
// distinguish "denied" from "succeeded with empty result" from "internal
// error".
type Result struct {
	Payload any    `json:"result,omitempty"`
	Denied  string `json:"denied,omitempty"`
}

func denied(message string) Result {
	return Result{Denied: message}
}

// Gateway is the composition point between the authorization layer and the
// storage collaborator.
type Gateway struct {
	auth    *auth.Service
	consent *consent.Cache
	store   storage.Store
}

// New wires a Gateway. The auth service is constructed here so the consent
// cache is always cleared when a session ends, including lazy-expiry
// logouts.
func New(repos auth.Repos, consentCache *consent.Cache, store storage.Store, authOptions ...auth.ServiceOption) (*Gateway, error) {
	if consentCache == nil {
		return nil, errors.New("[gate.New] consent cache is required")
	}
	if store == nil {
		return nil, errors.New("[gate.New] store is required")
	}

	options := make([]auth.ServiceOption, 0, len(authOptions)+1)
	options = append(options, authOptions...)
	options = append(options, auth.WithLogoutHook(consentCache.Clear))

	authService, err := auth.NewService(repos, options...)
	if err != nil {
		return nil, errors.Wrap(err, "[gate.New] auth.NewService")
	}

	return &Gateway{
		auth:    authService,
		consent: consentCache,
		store:   store,
	}, nil
}

// Authenticate issues a session token for valid credentials.
func (g *Gateway) Authenticate(identity, secret string) (token string, ok bool, err error) {
	return g.auth.Authenticate(identity, secret)
}

// Logout ends the session and erases the identity's consent grants.
func (g *Gateway) Logout(token string) {
	g.auth.Logout(token)
}

// CurrentIdentity returns the identity behind the token, if the session is
// still valid.
func (g *Gateway) CurrentIdentity(token string) (string, bool) {
	return g.auth.CurrentIdentity(token)
}

// Grant records consent for a destructive operation on a resource. The
// grant is keyed to the calling identity and survives until that identity
// logs out or its session expires.
func (g *Gateway) Grant(token, operation, resource string) (Result, error) {
	if !g.auth.Validate(token) {
		return denied(DeniedAuthenticationRequired), nil
	}
	g.auth.Refresh(token)

	identity, ok := g.auth.CurrentIdentity(token)
	if !ok {
		return denied(DeniedAuthenticationRequired), nil
	}

	g.consent.Grant(identity, operation, resource)
	log.Info().Str("identity", identity).Str("operation", operation).Str("resource", resource).Msg("consent granted")
	return Result{Payload: fmt.Sprintf("consent granted for %s on table %q", operation, resource)}, nil
}

// Schema returns the full database schema; it requires a valid session but
// no particular capability.
func (g *Gateway) Schema(ctx context.Context, token string) (Result, error) {
	if !g.auth.Validate(token) {
		return denied(DeniedAuthenticationRequired), nil
	}
	g.auth.Refresh(token)

	schema, err := g.store.FullSchema(ctx)
	if err != nil {
		log.Error().Err(err).Msg("schema read failed")
		return Result{}, errors.Wrap(err, "[Schema] store.FullSchema")
	}
	return Result{Payload: schema}, nil
}

// Execute runs a named operation through the full gate sequence. Denials
// come back inside the Result; an error means the operation itself failed.
// No session or consent lock is held across the storage delegation.
func (g *Gateway) Execute(ctx context.Context, token, operation string, req Request) (Result, error) {
	descriptor, known := Describe(operation)
	if !known {
		return Result{}, errors.Errorf("[Execute] unknown operation %q", operation)
	}

	if !g.auth.Validate(token) {
		return denied(DeniedAuthenticationRequired), nil
	}

	// Sliding window: any successful authenticated call extends the session.
	g.auth.Refresh(token)

	if descriptor.RequiredCapability != "" && !g.auth.HasCapability(token, descriptor.RequiredCapability) {
		identity, _ := g.auth.CurrentIdentity(token)
		log.Warn().Str("identity", identity).Str("operation", operation).Msg("permission denied")
		return denied(DeniedInsufficientPermissions(operation)), nil
	}

	if descriptor.Destructive {
		identity, ok := g.auth.CurrentIdentity(token)
		if !ok {
			return denied(DeniedAuthenticationRequired), nil
		}
		if !g.consent.Check(identity, operation, req.Table) {
			return denied(DeniedConsentRequired(operation)), nil
		}
	}

	payload, err := g.dispatch(ctx, operation, req)
	if err != nil {
		log.Error().Err(err).Str("operation", operation).Msg("operation failed")
		return Result{}, errors.Wrapf(err, "operation %s failed", operation)
	}

	identity, _ := g.auth.CurrentIdentity(token)
	log.Info().Str("identity", identity).Str("operation", operation).Msg("operation executed")
	return Result{Payload: payload}, nil
}

func (g *Gateway) dispatch(ctx context.Context, operation string, req Request) (any, error) {
	switch operation {
	case OpListTables:
		return g.store.ListTables(ctx)
	case OpDescribeTable:
		return g.store.DescribeTable(ctx, req.Table)
	case OpReadData:
		return g.store.Read(ctx, req.Table, req.Filter, req.Limit, req.OrderBy)
	case OpInsertData:
		id, err := g.store.Insert(ctx, req.Table, req.Row)
		if err != nil {
			return nil, err
		}
		return map[string]any{"inserted_id": id}, nil
	case OpUpdateData:
		count, err := g.store.Update(ctx, req.Table, req.Changes, req.Filter)
		if err != nil {
			return nil, err
		}
		return map[string]any{"updated_rows": count}, nil
	case OpDeleteData:
		count, err := g.store.Delete(ctx, req.Table, req.Filter)
		if err != nil {
			return nil, err
		}
		return map[string]any{"deleted_rows": count}, nil
	case OpCreateTable:
		var schema storage.TableSchema
		if req.Schema != nil {
			schema = *req.Schema
		}
		if err := g.store.CreateTable(ctx, req.Table, schema); err != nil {
			return nil, err
		}
		return map[string]any{"created_table": req.Table}, nil
	case OpDropTable:
		if err := g.store.DropTable(ctx, req.Table); err != nil {
			return nil, err
		}
		return map[string]any{"dropped_table": req.Table}, nil
	}
	return nil, errors.Errorf("unknown operation %q", operation)
}
