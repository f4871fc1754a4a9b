// Package telemetry exposes the service's domain metrics over OpenTelemetry.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the counters recorded by the auth flows. A nil *Metrics is
// valid and drops every recording, so tests and tools can pass nil.
type Metrics struct {
	registrations   metric.Int64Counter
	logins          metric.Int64Counter
	loginFailures   metric.Int64Counter
	lockouts        metric.Int64Counter
	tokensIssued    metric.Int64Counter
	tokensRedeemed  metric.Int64Counter
	sessionsRevoked metric.Int64Counter
}

// NewMetrics registers the auth counters on the given meter provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter("user-auth-service")
	m := &Metrics{}
	var err error
	if m.registrations, err = meter.Int64Counter("auth.registrations",
		metric.WithDescription("Accounts registered")); err != nil {
		return nil, err
	}
	if m.logins, err = meter.Int64Counter("auth.logins",
		metric.WithDescription("Successful logins")); err != nil {
		return nil, err
	}
	if m.loginFailures, err = meter.Int64Counter("auth.login_failures",
		metric.WithDescription("Failed login attempts")); err != nil {
		return nil, err
	}
	if m.lockouts, err = meter.Int64Counter("auth.lockouts",
		metric.WithDescription("Accounts locked by repeated failures")); err != nil {
		return nil, err
	}
	if m.tokensIssued, err = meter.Int64Counter("auth.tokens_issued",
		metric.WithDescription("Single-use tokens issued, by purpose")); err != nil {
		return nil, err
	}
	if m.tokensRedeemed, err = meter.Int64Counter("auth.tokens_redeemed",
		metric.WithDescription("Single-use tokens redeemed, by purpose")); err != nil {
		return nil, err
	}
	if m.sessionsRevoked, err = meter.Int64Counter("auth.sessions_revoked",
		metric.WithDescription("Sessions revoked")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) RecordRegistration(ctx context.Context) {
	if m != nil {
		m.registrations.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLogin(ctx context.Context) {
	if m != nil {
		m.logins.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLoginFailure(ctx context.Context) {
	if m != nil {
		m.loginFailures.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLockout(ctx context.Context) {
	if m != nil {
		m.lockouts.Add(ctx, 1)
	}
}

func (m *Metrics) RecordTokenIssued(ctx context.Context, purpose string) {
	if m != nil {
		m.tokensIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("purpose", purpose)))
	}
}

func (m *Metrics) RecordTokenRedeemed(ctx context.Context, purpose string) {
	if m != nil {
		m.tokensRedeemed.Add(ctx, 1, metric.WithAttributes(attribute.String("purpose", purpose)))
	}
}

func (m *Metrics) RecordSessionsRevoked(ctx context.Context, n int64) {
	if m != nil && n > 0 {
		m.sessionsRevoked.Add(ctx, n)
	}
}
