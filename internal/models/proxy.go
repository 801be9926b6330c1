package models

// ProxyEntry is an upstream HTTP proxy. It is created or edited only through
// netproxy.Parse, so Raw is always the canonical login:password@host:port form.
type ProxyEntry struct {
	ID            string  `json:"id"`
	Login         string  `json:"login"`
	Password      string  `json:"password"`
	Host          string  `json:"host"`
	Port          uint16  `json:"port"`
	Raw           string  `json:"raw"`
	LastLatencyMs *uint64 `json:"lastLatencyMs"`
	LastStatus    *string `json:"lastStatus"`
	LastCheckedAt *int64  `json:"lastCheckedAt"`
}

// Clone returns a deep copy.
func (p ProxyEntry) Clone() ProxyEntry {
	out := p
	if p.LastLatencyMs != nil {
		v := *p.LastLatencyMs
		out.LastLatencyMs = &v
	}
	out.LastStatus = cloneString(p.LastStatus)
	out.LastCheckedAt = cloneInt64(p.LastCheckedAt)
	return out
}
