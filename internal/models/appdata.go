package models

// AppData is the root aggregate persisted after every mutation.
//
// ActiveAccountID and ActiveProxyID are weak references: when set they must
// name an existing entry. Every delete clears or reassigns them in the same
// update.
type AppData struct {
	Accounts        []Account    `json:"accounts"`
	ActiveAccountID *string      `json:"activeAccountId"`
	Proxies         []ProxyEntry `json:"proxies"`
	ActiveProxyID   *string      `json:"activeProxyId"`
	LimitsBaseURL   string       `json:"limitsBaseUrl"`
	PreferredIDE    *string      `json:"preferredIde"`
}

// NewAppData returns the state used when nothing has been persisted yet.
func NewAppData() AppData {
	return AppData{
		Accounts:      []Account{},
		Proxies:       []ProxyEntry{},
		LimitsBaseURL: DefaultLimitsBaseURL,
	}
}

// Clone returns a deep copy, safe to hand out of a locked section.
func (d AppData) Clone() AppData {
	out := d
	out.Accounts = make([]Account, len(d.Accounts))
	for i, a := range d.Accounts {
		out.Accounts[i] = a.Clone()
	}
	out.Proxies = make([]ProxyEntry, len(d.Proxies))
	for i, p := range d.Proxies {
		out.Proxies[i] = p.Clone()
	}
	out.ActiveAccountID = cloneString(d.ActiveAccountID)
	out.ActiveProxyID = cloneString(d.ActiveProxyID)
	out.PreferredIDE = cloneString(d.PreferredIDE)
	return out
}

// FindAccount returns a pointer into d.Accounts, or nil.
func (d *AppData) FindAccount(id string) *Account {
	for i := range d.Accounts {
		if d.Accounts[i].ID == id {
			return &d.Accounts[i]
		}
	}
	return nil
}

// FindProxy returns a pointer into d.Proxies, or nil.
func (d *AppData) FindProxy(id string) *ProxyEntry {
	for i := range d.Proxies {
		if d.Proxies[i].ID == id {
			return &d.Proxies[i]
		}
	}
	return nil
}

// ActiveProxy resolves the weak proxy reference. A dangling id yields nil.
func (d *AppData) ActiveProxy() *ProxyEntry {
	if d.ActiveProxyID == nil {
		return nil
	}
	p := d.FindProxy(*d.ActiveProxyID)
	if p == nil {
		return nil
	}
	cp := p.Clone()
	return &cp
}

// RemoveAccount deletes an account and re-points the active account id to the
// first remaining account (or clears it). Reports whether anything was removed.
func (d *AppData) RemoveAccount(id string) bool {
	kept := d.Accounts[:0]
	removed := false
	for _, a := range d.Accounts {
		if a.ID == id {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	d.Accounts = kept

	if d.ActiveAccountID != nil && *d.ActiveAccountID == id {
		d.ActiveAccountID = nil
		if len(d.Accounts) > 0 {
			first := d.Accounts[0].ID
			d.ActiveAccountID = &first
		}
	}
	return removed
}

// RemoveProxy deletes a proxy and clears the active proxy id if it pointed at it.
func (d *AppData) RemoveProxy(id string) bool {
	kept := d.Proxies[:0]
	removed := false
	for _, p := range d.Proxies {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	d.Proxies = kept

	if d.ActiveProxyID != nil && *d.ActiveProxyID == id {
		d.ActiveProxyID = nil
	}
	return removed
}

// Normalize repairs a freshly loaded aggregate: nil slices become empty,
// dangling weak references are cleared and an empty base URL gets the default.
func (d *AppData) Normalize() {
	if d.Accounts == nil {
		d.Accounts = []Account{}
	}
	if d.Proxies == nil {
		d.Proxies = []ProxyEntry{}
	}
	if d.LimitsBaseURL == "" {
		d.LimitsBaseURL = DefaultLimitsBaseURL
	}
	if d.ActiveAccountID != nil && d.FindAccount(*d.ActiveAccountID) == nil {
		d.ActiveAccountID = nil
	}
	if d.ActiveProxyID != nil && d.FindProxy(*d.ActiveProxyID) == nil {
		d.ActiveProxyID = nil
	}
}
