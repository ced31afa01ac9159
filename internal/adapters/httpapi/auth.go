package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const DefaultTokenTTL = 12 * time.Hour

// Claims del token del dashboard.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Auth: un único operador (user + hash bcrypt) y tokens HS256.
type Auth struct {
	secret []byte
	user   string
	hash   string
	ttl    time.Duration
	now    func() time.Time
}

func NewAuth(secret, user, passwordHash string, ttl time.Duration) *Auth {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Auth{secret: []byte(secret), user: user, hash: passwordHash, ttl: ttl, now: time.Now}
}

func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(h), err
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Login valida user/pass y devuelve un token firmado.
func (a *Auth) Login(username, password string) (string, error) {
	if a.user == "" || a.hash == "" || username != a.user || !CheckPassword(password, a.hash) {
		return "", ErrInvalidCredentials
	}
	return a.Token(username)
}

func (a *Auth) Token(username string) (string, error) {
	now := a.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Auth) Validate(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// claimsFrom lee "Authorization: Bearer <jwt>"; nil si falta o no valida.
func (a *Auth) claimsFrom(r *http.Request) *Claims {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return nil
	}
	c, err := a.Validate(strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		return nil
	}
	return c
}
