package models

import "testing"

func newData(ids ...string) AppData {
	d := NewAppData()
	for _, id := range ids {
		d.Accounts = append(d.Accounts, Account{ID: id})
	}
	return d
}

func TestRemoveAccount_ReassignsActiveToFirstRemaining(t *testing.T) {
	d := newData("a1", "a2", "a3")
	active := "a2"
	d.ActiveAccountID = &active

	if !d.RemoveAccount("a2") {
		t.Fatal("expected removal")
	}
	if d.ActiveAccountID == nil || *d.ActiveAccountID != "a1" {
		t.Fatalf("active = %v, want a1", d.ActiveAccountID)
	}
	if len(d.Accounts) != 2 {
		t.Fatalf("accounts = %d", len(d.Accounts))
	}
}

func TestRemoveAccount_ClearsActiveWhenLast(t *testing.T) {
	d := newData("a1")
	active := "a1"
	d.ActiveAccountID = &active

	d.RemoveAccount("a1")
	if d.ActiveAccountID != nil {
		t.Fatalf("active should be cleared, got %q", *d.ActiveAccountID)
	}
}

func TestRemoveAccount_KeepsUnrelatedActive(t *testing.T) {
	d := newData("a1", "a2")
	active := "a2"
	d.ActiveAccountID = &active

	if d.RemoveAccount("missing") {
		t.Fatal("nothing should be removed")
	}
	d.RemoveAccount("a1")
	if d.ActiveAccountID == nil || *d.ActiveAccountID != "a2" {
		t.Fatalf("active = %v, want a2", d.ActiveAccountID)
	}
}

func TestRemoveProxy_ClearsActive(t *testing.T) {
	d := NewAppData()
	d.Proxies = []ProxyEntry{{ID: "p1"}, {ID: "p2"}}
	active := "p1"
	d.ActiveProxyID = &active

	d.RemoveProxy("p2")
	if d.ActiveProxyID == nil {
		t.Fatal("unrelated delete cleared active proxy")
	}
	d.RemoveProxy("p1")
	if d.ActiveProxyID != nil {
		t.Fatal("active proxy should be cleared")
	}
	if d.ActiveProxy() != nil {
		t.Fatal("ActiveProxy should resolve to nil")
	}
}

func TestApplyQuotaResult(t *testing.T) {
	a := Account{ID: "a"}
	old := &QuotaInfo{FetchedAt: 1}
	a.Quota = old

	a.ApplyQuotaResult(nil, errTest("Quota request failed (500 Internal Server Error): x"))
	if a.Quota != old || a.LastError == nil {
		t.Fatalf("failure should keep quota and set lastError: %+v", a)
	}

	fresh := &QuotaInfo{FetchedAt: 2}
	a.ApplyQuotaResult(fresh, nil)
	if a.Quota != fresh || a.LastError != nil {
		t.Fatalf("success should replace quota and clear lastError: %+v", a)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
