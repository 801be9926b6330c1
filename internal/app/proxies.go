package app

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pysugar/codex-accounts/internal/apperr"
	"github.com/pysugar/codex-accounts/internal/models"
	"github.com/pysugar/codex-accounts/internal/netproxy"
)

func proxyNotFound(id string) error {
	return apperr.NotFound("Proxy", id)
}

// SaveProxy validates value and either edits proxy id or, with a nil id,
// adds a new proxy.
func (s *Service) SaveProxy(id *string, value string) (models.AppData, error) {
	parsed, err := netproxy.Parse(value)
	if err != nil {
		return models.AppData{}, err
	}

	return s.store.Update(func(d *models.AppData) error {
		if id != nil {
			p := d.FindProxy(*id)
			if p == nil {
				return proxyNotFound(*id)
			}
			p.Login = parsed.Login
			p.Password = parsed.Password
			p.Host = parsed.Host
			p.Port = parsed.Port
			p.Raw = parsed.Raw()
			return nil
		}

		d.Proxies = append(d.Proxies, models.ProxyEntry{
			ID:       uuid.New().String(),
			Login:    parsed.Login,
			Password: parsed.Password,
			Host:     parsed.Host,
			Port:     parsed.Port,
			Raw:      parsed.Raw(),
		})
		return nil
	})
}

// DeleteProxy removes a proxy and clears it as the active one.
func (s *Service) DeleteProxy(id string) (models.AppData, error) {
	data, err := s.store.Update(func(d *models.AppData) error {
		if !d.RemoveProxy(id) {
			return proxyNotFound(id)
		}
		return nil
	})
	if err != nil {
		return models.AppData{}, err
	}
	s.metrics.SetProxyLatency(id, nil)
	log.Printf("🗑️ [Store] Removed proxy %s", id)
	return data, nil
}

// SetActiveProxy routes outbound calls through proxy id; nil means direct.
func (s *Service) SetActiveProxy(id *string) (models.AppData, error) {
	return s.store.Update(func(d *models.AppData) error {
		if id == nil {
			d.ActiveProxyID = nil
			return nil
		}
		if d.FindProxy(*id) == nil {
			return proxyNotFound(*id)
		}
		v := *id
		d.ActiveProxyID = &v
		return nil
	})
}

// TestProxy probes a proxy outside the lock and records the outcome.
func (s *Service) TestProxy(id string) (ProxyTestResult, error) {
	var proxy models.ProxyEntry
	err := s.store.View(func(d *models.AppData) error {
		p := d.FindProxy(id)
		if p == nil {
			return proxyNotFound(id)
		}
		proxy = *p
		return nil
	})
	if err != nil {
		return ProxyTestResult{}, err
	}

	checkedAt := s.nowUnix()
	latency, probeErr := s.probe(context.Background(), proxy.Host, proxy.Port)

	result := ProxyTestResult{ProxyID: id, CheckedAt: checkedAt}
	if probeErr != nil {
		msg := probeErr.Error()
		result.Error = &msg
	} else {
		ms := uint64(latency.Milliseconds())
		result.Reachable = true
		result.LatencyMs = &ms
	}

	_, err = s.store.Update(func(d *models.AppData) error {
		p := d.FindProxy(id)
		if p == nil {
			return apperr.Inconsistent("Proxy disappeared during update")
		}
		status := "ok"
		if !result.Reachable {
			status = "error"
		}
		p.LastStatus = &status
		p.LastCheckedAt = &checkedAt
		p.LastLatencyMs = nil
		if result.LatencyMs != nil {
			ms := *result.LatencyMs
			p.LastLatencyMs = &ms
		}
		return nil
	})
	if err != nil {
		return ProxyTestResult{}, err
	}

	s.metrics.SetProxyLatency(id, result.LatencyMs)
	log.Printf("🌐 [Proxy] %s:%d reachable=%v", proxy.Host, proxy.Port, result.Reachable)
	return result, nil
}
