package middleware

import (
	"errors"
	"strings"

	"github.com/andreyxaxa/oral-screening/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const principalKey = "principal"

// Claims is the token payload issued by the identity service: sub is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth verifies an HS256 bearer token and stores the caller as an entity.Principal.
// An empty issuer disables the issuer check.
func Auth(secret []byte, issuer string) fiber.Handler {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	keyFunc := func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}

	return func(ctx *fiber.Ctx) error {
		raw, ok := bearer(ctx.Get(fiber.HeaderAuthorization))
		if !ok {
			return response.Fail(ctx, errs.Unauthorized("missing bearer token"))
		}

		claims := &Claims{}
		if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Fail(ctx, errs.Unauthorized("token expired"))
			}
			return response.Fail(ctx, errs.Unauthorized("invalid token"))
		}

		principal, err := principalFromClaims(claims)
		if err != nil {
			return response.Fail(ctx, err)
		}

		ctx.Locals(principalKey, principal)

		return ctx.Next()
	}
}

// RequireRole lets through only principals holding one of roles.
func RequireRole(roles ...entity.Role) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		p, ok := PrincipalFrom(ctx)
		if !ok {
			return response.Fail(ctx, errs.Unauthorized("authentication required"))
		}

		for _, r := range roles {
			if p.Role == r {
				return ctx.Next()
			}
		}

		return response.Fail(ctx, errs.Forbidden("role %s may not access this resource", p.Role))
	}
}

func PrincipalFrom(ctx *fiber.Ctx) (entity.Principal, bool) {
	p, ok := ctx.Locals(principalKey).(entity.Principal)
	return p, ok
}

func principalFromClaims(c *Claims) (entity.Principal, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return entity.Principal{}, errs.Unauthorized("token subject is not a user id")
	}

	role := entity.Role(c.Role)
	switch role {
	case entity.RolePatient, entity.RoleAdmin:
	default:
		return entity.Principal{}, errs.Unauthorized("unknown role %q", c.Role)
	}

	return entity.Principal{ID: id, Role: role}, nil
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)

	return token, token != ""
}
