package repository

import (
	"context"
	"errors"
	"net"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"blogapi/internal/tracing"
)

type lookupFunc func(ctx context.Context, host string) ([]string, error)

// Resolver resolves database host names and records every lookup as a span
// in the name-resolution scope. It plugs into pgx as a LookupFunc and into
// the mongo driver as its dialer.
type Resolver struct {
	tracer trace.Tracer
	lookup lookupFunc
	dialer net.Dialer
}

func NewResolver(tp trace.TracerProvider) *Resolver {
	return newResolver(tp, net.DefaultResolver.LookupHost)
}

func newResolver(tp trace.TracerProvider, lookup lookupFunc) *Resolver {
	return &Resolver{tracer: tp.Tracer(tracing.ScopeDNS), lookup: lookup}
}

// LookupHost returns IP literals unchanged and without a span.
func (r *Resolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	if net.ParseIP(host) != nil {
		return []string{host}, nil
	}

	ctx, span := r.tracer.Start(ctx, "dns.lookup",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(semconv.ServerAddress(host)),
	)
	defer span.End()

	addrs, err := r.lookup(ctx, host)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.StringSlice("dns.addresses", addrs))
	return addrs, nil
}

// DialContext resolves the host part of address and dials each result in
// order until one connects.
func (r *Resolver) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return r.dialer.DialContext(ctx, network, address)
	}

	addrs, err := r.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, addr := range addrs {
		conn, err := r.dialer.DialContext(ctx, network, net.JoinHostPort(addr, port))
		if err == nil {
			return conn, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
