package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/user"
)

const (
	contextTokenKey   = "userToken"
	contextSessionKey = "session"
)

// Claims represents the authorization claims transmitted via a JWT.
// Roles are never read from the token; they come from the stored profile.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

func (c Claims) Identity() user.Identity {
	return user.Identity{UserID: c.Subject, Email: c.Email, DisplayName: c.Name}
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// NewClaims returns the claims of a token issued now for ident.
func NewClaims(conf *core.Config, ident user.Identity) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   ident.UserID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: ident.Email,
		Name:  ident.DisplayName,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	jwtConf := newJWTConfig(conf)
	method := jwt.GetSigningMethod(jwtConf.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(jwtConf.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextSession returns the session resolved by sessionMiddleware, or core.Anonymous.
func getContextSession(ctx echo.Context) core.Session {
	if sess, ok := ctx.Get(contextSessionKey).(core.Session); ok {
		return sess
	}
	return core.Anonymous
}

// sessionMiddleware resolves the session of the JWT identity, creating its profile on first sight.
func sessionMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			sess, err := svc.Session(ctx.Request().Context(), claims.Identity())
			if err != nil {
				return errors.Wrap(err, "resolving session")
			}
			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}
