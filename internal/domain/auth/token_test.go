package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateToken(secret, Actor{EmployeeID: "e1", Role: RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	actor, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if actor.EmployeeID != "e1" || actor.Role != RoleEmployee {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", Actor{EmployeeID: "e1", Role: RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", Actor{EmployeeID: "e1", Role: RoleEmployee}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestParseTokenUnknownRole(t *testing.T) {
	token, err := GenerateToken("secret", Actor{EmployeeID: "e1", Role: "superuser"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestActorCanActFor(t *testing.T) {
	admin := Actor{EmployeeID: "adm", Role: RoleAdmin}
	employee := Actor{EmployeeID: "e1", Role: RoleEmployee}

	if !admin.CanActFor("anyone") {
		t.Fatal("expected admin to act for anyone")
	}
	if !employee.CanActFor("e1") {
		t.Fatal("expected employee to act for self")
	}
	if employee.CanActFor("e2") {
		t.Fatal("did not expect employee to act for another")
	}
	if employee.IsAdmin() {
		t.Fatal("did not expect employee to be admin")
	}
}
