package codex

import (
	"encoding/base64"
	"testing"
)

func makeJWT(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"none"}`)) + "." + enc.EncodeToString([]byte(payload)) + ".sig"
}

func TestParseJWT(t *testing.T) {
	token := makeJWT(`{"sub":"user-1","email":"u@x.com","exp":1700000000,"https://api.openai.com/auth":{"chatgpt_account_id":"acc-9","chatgpt_plan_type":"plus"}}`)

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.Email != "u@x.com" || claims.Subject != "user-1" || claims.Exp != 1700000000 {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.AuthInfo.ChatgptAccountID != "acc-9" || claims.AuthInfo.ChatgptPlanType != "plus" {
		t.Fatalf("unexpected auth info %+v", claims.AuthInfo)
	}
}

func TestParseJWT_Malformed(t *testing.T) {
	if _, err := ParseJWT("nodots"); err == nil {
		t.Fatal("expected error for token without payload")
	}
	if _, err := ParseJWT("a.!!!.c"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestExtractAccountID(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string // "" means nil
	}{
		{"chatgpt account id", `{"sub":"s","https://api.openai.com/auth":{"chatgpt_account_id":"c1","account_id":"a1"}}`, "c1"},
		{"account id fallback", `{"sub":"s","https://api.openai.com/auth":{"account_id":"a1"}}`, "a1"},
		{"subject fallback", `{"sub":"s-only","email":"u@x.com"}`, "s-only"},
		{"claim without ids", `{"sub":"s2","https://api.openai.com/auth":{}}`, "s2"},
		{"nothing", `{"email":"u@x.com"}`, ""},
		{"not json", `not-json`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAccountID(makeJWT(tt.payload))
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected nil, got %q", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Fatalf("got %v, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractAccountID_Garbage(t *testing.T) {
	if got := ExtractAccountID(""); got != nil {
		t.Fatalf("expected nil for empty token, got %q", *got)
	}
	if got := ExtractAccountID("x.%%%.y"); got != nil {
		t.Fatalf("expected nil for undecodable token, got %q", *got)
	}
}

func TestExtractEmail(t *testing.T) {
	if got := ExtractEmail(makeJWT(`{"email":"u@x.com"}`)); got == nil || *got != "u@x.com" {
		t.Fatalf("got %v", got)
	}
	if got := ExtractEmail(makeJWT(`{"email":42}`)); got != nil {
		t.Fatalf("non-string email should be ignored, got %q", *got)
	}
	if got := ExtractEmail(makeJWT(`{"sub":"s"}`)); got != nil {
		t.Fatalf("expected nil, got %q", *got)
	}
}
