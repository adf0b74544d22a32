package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"docchat/internal/pkg/credential"
	"docchat/internal/pkg/jwtutil"
	"docchat/internal/repository"
)

func newAuthService(t *testing.T) (*AuthService, *jwtutil.Manager) {
	t.Helper()
	codec, err := credential.New("sha256", 0)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	tokens := jwtutil.NewManager("secret", 15*time.Minute)
	return NewAuthService(repository.NewUserRepository(newTestDB(t)), codec, tokens), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens := newAuthService(t)

	res, err := svc.Register(RegisterInput{Email: "  Ada@Example.com ", Password: "pw-123", FullName: "Ada Lovelace"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.Email != "ada@example.com" || res.User.ID == 0 {
		t.Fatalf("unexpected user %+v", res.User)
	}
	if res.User.PasswordHash == "pw-123" {
		t.Fatal("password stored in clear")
	}
	userID, err := tokens.Verify(res.Token)
	if err != nil || userID != res.User.ID {
		t.Fatalf("token does not identify user: %v %d", err, userID)
	}

	login, err := svc.Login(LoginInput{Email: "ada@example.com", Password: "pw-123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != res.User.ID {
		t.Fatalf("login returned another user %+v", login.User)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	if _, err := svc.Register(RegisterInput{Email: "a@b.io", Password: "x", FullName: "A"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(RegisterInput{Email: "A@B.io", Password: "y", FullName: "B"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestConcurrentRegisterSameEmail(t *testing.T) {
	svc, _ := newAuthService(t)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(RegisterInput{Email: "race@example.com", Password: "pw", FullName: "Racer"})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrEmailExists):
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one registration, got %d", created)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	for _, in := range []RegisterInput{
		{Email: "not-an-email", Password: "x"},
		{Email: "", Password: "x"},
		{Email: "a@b.io", Password: ""},
	} {
		if _, err := svc.Register(in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newAuthService(t)
	if _, err := svc.Register(RegisterInput{Email: "a@b.io", Password: "right", FullName: "A"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Login(LoginInput{Email: "a@b.io", Password: "wrong"}); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if _, err := svc.Login(LoginInput{Email: "ghost@b.io", Password: "right"}); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for unknown email, got %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	svc, _ := newAuthService(t)
	res, err := svc.Register(RegisterInput{Email: "a@b.io", Password: "x", FullName: "A"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u, err := svc.GetUserByID(res.User.ID); err != nil || u.FullName != "A" {
		t.Fatalf("get: %v %+v", err, u)
	}
	if _, err := svc.GetUserByID(999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
