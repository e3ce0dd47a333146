package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("bad auth header")
)

const tokenSubject = "planner"

// Auth validates HS256 bearer tokens signed with a shared secret.
type Auth struct {
	secret []byte
	parser *jwt.Parser
	now    func() time.Time
}

// NewAuth creates an Auth for the given shared secret.
func NewAuth(secret string) *Auth {
	if secret == "" {
		panic("api.NewAuth: secret is empty")
	}
	return &Auth{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
		now:    time.Now,
	}
}

// IssueToken signs a token valid for ttl.
func (a *Auth) IssueToken(ttl time.Duration) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub": tokenSubject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify checks the bearer token carried by an Authorization header value.
func (a *Auth) Verify(header string) error {
	token, err := bearerTokenFromString(header)
	if err != nil {
		return err
	}
	parsed, err := a.parser.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid claims")
	}
	if !claims.VerifyExpiresAt(a.now().Unix(), true) {
		return errors.New("token expired")
	}
	if sub, _ := claims["sub"].(string); sub != tokenSubject {
		return errors.New("invalid subject")
	}
	return nil
}

func bearerTokenFromString(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errMissingAuthorization
	}
	token, ok := strings.CutPrefix(trimmed, "Bearer ")
	if !ok || token == "" {
		return "", errBadAuthorization
	}
	if strings.Count(token, ".") != 2 {
		return "", errBadAuthorization
	}
	return token, nil
}

// requireAuth rejects requests without a valid token. The stream endpoint may
// pass the token as a query parameter since EventSource cannot set headers.
func requireAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if auth == nil {
				return next(c)
			}
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				if token := c.QueryParam("token"); token != "" {
					header = "Bearer " + token
				}
			}
			if err := auth.Verify(header); err != nil {
				return c.String(http.StatusUnauthorized, err.Error())
			}
			return next(c)
		}
	}
}
