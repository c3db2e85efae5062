package services

import (
  "context"
  "net/http"
  "testing"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillvoice/skillvoice-backend/internal/apierr"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

type fakeUserRepo struct {
  users       map[uuid.UUID]*types.User
  provisioned []uuid.UUID
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
  return f.users[userID], nil
}

func (f *fakeUserRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, email string) (*types.User, error) {
  if user, ok := f.users[userID]; ok {
    return user, nil
  }
  user := &types.User{ID: userID, Email: email}
  if f.users == nil {
    f.users = map[uuid.UUID]*types.User{}
  }
  f.users[userID] = user
  f.provisioned = append(f.provisioned, userID)
  return user, nil
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
  t.Helper()
  token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("irrelevant"))
  if err != nil {
    t.Fatalf("sign token: %v", err)
  }
  return token
}

func TestVerifierExtractsSubject(t *testing.T) {
  userID := uuid.New()
  token := signedToken(t, jwt.MapClaims{"sub": userID.String(), "email": "dev@example.com"})

  identity, err := NewUnverifiedClaimsVerifier().Verify(token)
  if err != nil {
    t.Fatalf("unexpected err: %v", err)
  }
  if identity.UserID != userID {
    t.Fatalf("UserID = %v, want %v", identity.UserID, userID)
  }
  if identity.Email != "dev@example.com" {
    t.Fatalf("Email = %q", identity.Email)
  }
}

func TestVerifierRejectsBadTokens(t *testing.T) {
  tests := []struct {
    name  string
    token string
  }{
    {"garbage", "not-a-jwt"},
    {"empty", ""},
    {"missing subject", signedTokenNoHelper(jwt.MapClaims{"email": "x@example.com"})},
    {"non-uuid subject", signedTokenNoHelper(jwt.MapClaims{"sub": "user-42"})},
  }
  verifier := NewUnverifiedClaimsVerifier()
  for _, tt := range tests {
    t.Run(tt.name, func(t *testing.T) {
      if _, err := verifier.Verify(tt.token); !apierr.IsStatus(err, http.StatusUnauthorized) {
        t.Fatalf("expected 401, got %v", err)
      }
    })
  }
}

func signedTokenNoHelper(claims jwt.MapClaims) string {
  token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("irrelevant"))
  return token
}

func TestAuthenticateProvisionsOnFirstUse(t *testing.T) {
  userID := uuid.New()
  repo := &fakeUserRepo{}
  svc := NewAuthService(testLogger(t), NewUnverifiedClaimsVerifier(), repo)
  token := signedToken(t, jwt.MapClaims{"sub": userID.String(), "email": "dev@example.com"})

  user, err := svc.Authenticate(context.Background(), token)
  if err != nil {
    t.Fatalf("unexpected err: %v", err)
  }
  if user.ID != userID {
    t.Fatalf("user id = %v", user.ID)
  }
  if len(repo.provisioned) != 1 {
    t.Fatalf("expected one provisioned user, got %v", repo.provisioned)
  }

  // second call reuses the existing record
  if _, err := svc.Authenticate(context.Background(), token); err != nil {
    t.Fatalf("repeat auth: %v", err)
  }
  if len(repo.provisioned) != 1 {
    t.Fatal("repeat auth must not provision again")
  }
}

func TestAuthenticateEmptyToken(t *testing.T) {
  svc := NewAuthService(testLogger(t), NewUnverifiedClaimsVerifier(), &fakeUserRepo{})
  if _, err := svc.Authenticate(context.Background(), "   "); !apierr.IsStatus(err, http.StatusUnauthorized) {
    t.Fatalf("expected 401, got %v", err)
  }
}
