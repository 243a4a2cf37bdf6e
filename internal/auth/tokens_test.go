package auth

import (
	"testing"
	"time"
)

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	manager, err := NewTokenManager("access-secret-for-tests", "refresh-secret-for-tests", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

func TestTokenManagerIssueAndVerify(t *testing.T) {
	manager := newTestManager(t)

	tokens, err := manager.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}

	claims, err := manager.VerifyAccess(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if claims.Subject != "user-1" || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	refreshClaims, err := manager.VerifyRefresh(tokens.RefreshToken)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if refreshClaims.Subject != "user-1" {
		t.Fatalf("unexpected refresh subject: %q", refreshClaims.Subject)
	}
}

func TestTokenManagerIssuesDistinctTokensWithinSameSecond(t *testing.T) {
	manager := newTestManager(t)

	// Pin the clock so both issuances share iat/nbf/exp down to the second.
	issued := time.Now().UTC()
	manager.now = func() time.Time { return issued }

	first, err := manager.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	second, err := manager.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}

	if first.RefreshToken == second.RefreshToken {
		t.Fatal("refresh tokens must differ across issuances or rotation cannot invalidate the prior session")
	}
	if first.AccessToken == second.AccessToken {
		t.Fatal("access tokens must differ across issuances")
	}
}

func TestTokenManagerRejectsCrossClassTokens(t *testing.T) {
	manager := newTestManager(t)

	tokens, err := manager.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := manager.VerifyAccess(tokens.RefreshToken); err != ErrInvalidToken {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}
	if _, err := manager.VerifyRefresh(tokens.AccessToken); err != ErrInvalidToken {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
}

func TestTokenManagerExpiry(t *testing.T) {
	manager := newTestManager(t)

	issued := time.Now().UTC()
	manager.now = func() time.Time { return issued }

	tokens, err := manager.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := manager.VerifyAccess(tokens.AccessToken); err != ErrInvalidToken {
		t.Fatalf("expected expired access token to be rejected, got %v", err)
	}

	// Refresh TTL is an hour, so it is still valid.
	if _, err := manager.VerifyRefresh(tokens.RefreshToken); err != nil {
		t.Fatalf("refresh should still verify: %v", err)
	}
}

func TestTokenManagerMalformedInput(t *testing.T) {
	manager := newTestManager(t)

	for _, token := range []string{"", "garbage", "aaa.bbb.ccc"} {
		if _, err := manager.VerifyAccess(token); err != ErrInvalidToken {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestNewTokenManagerValidation(t *testing.T) {
	if _, err := NewTokenManager("", "refresh", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for empty access secret")
	}
	if _, err := NewTokenManager("access", "refresh", 0, time.Hour); err == nil {
		t.Fatal("expected error for zero access TTL")
	}
}
