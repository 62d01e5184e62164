package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"github.com/coreos/go-oidc/v3/oidc"
)

type (
	// ClaimShape names the claims a principal is built from.
	ClaimShape struct {
		SubjectKey string
		EmailKey   string
		GroupsKey  string
	}

	// ClaimSource pulls the raw claim set for one request. ok is false when
	// the request carries no claims at all.
	ClaimSource interface {
		Claims(r *http.Request) (claims map[string]any, ok bool)
	}

	// GatewaySource reads the claims the API Gateway Cognito authorizer put
	// into requestContext.authorizer.claims. The proxy adapter stores that
	// request context on the request's context.Context.
	GatewaySource struct{}

	// BearerSource verifies an ID token from the Authorization header. Used
	// when the service runs outside API Gateway.
	BearerSource struct {
		verifier *oidc.IDTokenVerifier
	}
)

func CognitoShape() ClaimShape {
	return ClaimShape{SubjectKey: "sub", EmailKey: "email", GroupsKey: "cognito:groups"}
}

// Principal builds a principal from raw claims. A missing or empty subject
// yields ok=false.
func (s ClaimShape) Principal(claims map[string]any) (Principal, bool) {
	subject, _ := claims[s.SubjectKey].(string)
	if strings.TrimSpace(subject) == "" {
		return Principal{}, false
	}
	email, _ := claims[s.EmailKey].(string)
	return NewPrincipal(subject, email, ParseGroups(claims[s.GroupsKey])), true
}

// ParseGroups accepts a comma-separated string or an array of names.
func ParseGroups(raw any) []string {
	switch v := raw.(type) {
	case string:
		var groups []string
		for _, g := range strings.Split(v, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
		return groups
	case []string:
		return v
	case []any:
		groups := make([]string, 0, len(v))
		for _, g := range v {
			if name, ok := g.(string); ok {
				groups = append(groups, name)
			}
		}
		return groups
	default:
		return nil
	}
}

func (GatewaySource) Claims(r *http.Request) (map[string]any, bool) {
	reqCtx, ok := core.GetAPIGatewayContextFromContext(r.Context())
	if !ok || reqCtx.Authorizer == nil {
		return nil, false
	}
	claims, ok := reqCtx.Authorizer["claims"].(map[string]any)
	return claims, ok
}

func NewBearerSource(ctx context.Context, issuer, clientID string) (*BearerSource, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("can not create oidc provider for %s: %w", issuer, err)
	}
	return &BearerSource{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// NewBearerSourceWithVerifier is used where the key set is known up front.
func NewBearerSourceWithVerifier(verifier *oidc.IDTokenVerifier) *BearerSource {
	return &BearerSource{verifier: verifier}
}

func (b *BearerSource) Claims(r *http.Request) (map[string]any, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, false
	}
	idToken, err := b.verifier.Verify(r.Context(), strings.TrimSpace(token))
	if err != nil {
		return nil, false
	}
	claims := map[string]any{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, false
	}
	return claims, true
}
