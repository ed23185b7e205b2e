// Package netdiag probes the health of the link behind the current
// WiFi association by pinging the default gateway. It backs the status
// command; scan and audit never depend on it.
package netdiag

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-ping/ping"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrUnsupported is returned on platforms without gateway discovery.
var ErrUnsupported = errors.New("gateway probe is not supported on this platform")

// Result is the outcome of one gateway probe.
type Result struct {
	Gateway  string        `json:"gateway" yaml:"gateway"`
	Sent     int           `json:"sent" yaml:"sent"`
	Received int           `json:"received" yaml:"received"`
	Loss     float64       `json:"loss" yaml:"loss"`
	AvgRTT   time.Duration `json:"avg_rtt" yaml:"avg_rtt"`
	Quality  string        `json:"quality" yaml:"quality"`
}

// Pinger is the slice of the ping library the prober needs.
type Pinger interface {
	Run() error
	Stop()
	Statistics() *ping.Statistics

	SetPrivileged(bool)
	SetCount(int)
	SetInterval(time.Duration)
	SetTimeout(time.Duration)
}

type pingerFactoryFunc func(addr string) (Pinger, error)

// Prober pings the default gateway.
type Prober struct {
	log           zerolog.Logger
	pingerFactory pingerFactoryFunc
	routePath     string
	goos          string

	count    int
	interval time.Duration
	timeout  time.Duration
}

// Option configures a Prober.
type Option func(*Prober)

// WithPingerFactory substitutes the pinger constructor for tests.
func WithPingerFactory(f func(addr string) (Pinger, error)) Option {
	return func(p *Prober) { p.pingerFactory = f }
}

// WithRoutePath points gateway discovery at a different route table.
func WithRoutePath(path string) Option {
	return func(p *Prober) { p.routePath = path }
}

// WithGOOS overrides platform detection for tests.
func WithGOOS(goos string) Option {
	return func(p *Prober) { p.goos = goos }
}

// NewProber returns a gateway prober with defaults: three echo
// requests, one per second, three seconds overall.
func NewProber(opts ...Option) *Prober {
	p := &Prober{
		log:       log.With().Str("component", "netdiag").Logger(),
		routePath: "/proc/net/route",
		goos:      runtime.GOOS,
		count:     3,
		interval:  time.Second,
		timeout:   3 * time.Second,
		pingerFactory: func(addr string) (Pinger, error) {
			pg, err := ping.NewPinger(addr)
			if err != nil {
				return nil, err
			}
			return &realPingerAdapter{p: pg}, nil
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe discovers the default gateway and pings it. The ping runs
// unprivileged (UDP) unless the process is root, where raw sockets
// work and are more reliable.
func (p *Prober) Probe(ctx context.Context) (*Result, error) {
	gateway, err := p.DefaultGateway()
	if err != nil {
		return nil, err
	}

	pinger, err := p.pingerFactory(gateway)
	if err != nil {
		return nil, fmt.Errorf("create pinger for %s: %w", gateway, err)
	}

	pinger.SetPrivileged(p.goos != "windows" && os.Geteuid() == 0)
	pinger.SetCount(p.count)
	pinger.SetInterval(p.interval)
	pinger.SetTimeout(p.timeout)

	// pinger.Run blocks; stop it when the context goes away.
	opCtx, opCancel := context.WithTimeout(ctx, p.timeout+500*time.Millisecond)
	defer opCancel()
	go func() {
		<-opCtx.Done()
		pinger.Stop()
	}()

	if err := pinger.Run(); err != nil {
		return nil, fmt.Errorf("ping %s: %w", gateway, err)
	}

	stats := pinger.Statistics()
	res := &Result{
		Gateway:  gateway,
		Sent:     stats.PacketsSent,
		Received: stats.PacketsRecv,
		Loss:     stats.PacketLoss,
		AvgRTT:   stats.AvgRtt,
		Quality:  lossQuality(stats.PacketLoss),
	}
	p.log.Debug().
		Str("gateway", gateway).
		Int("received", res.Received).
		Float64("loss", res.Loss).
		Msg("Gateway probe finished")
	return res, nil
}

// DefaultGateway reads the default route from the kernel route table.
// Linux only.
func (p *Prober) DefaultGateway() (string, error) {
	if p.goos != "linux" {
		return "", ErrUnsupported
	}

	f, err := os.Open(p.routePath)
	if err != nil {
		return "", fmt.Errorf("open route table: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Scan() // header

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		// Destination 00000000 marks the default route. Gateway is a
		// little-endian hex IPv4 address.
		if fields[1] != "00000000" {
			continue
		}
		raw, err := strconv.ParseUint(fields[2], 16, 32)
		if err != nil {
			continue
		}
		ip := make(net.IP, 4)
		binary.LittleEndian.PutUint32(ip, uint32(raw))
		return ip.String(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read route table: %w", err)
	}
	return "", errors.New("no default route found")
}

// lossQuality buckets packet loss into the same labels the signal
// quality helper uses, so status output reads uniformly.
func lossQuality(loss float64) string {
	switch {
	case loss <= 0:
		return "excellent"
	case loss <= 10:
		return "good"
	case loss <= 33:
		return "fair"
	case loss < 100:
		return "weak"
	default:
		return "poor"
	}
}

// realPingerAdapter wraps ping.Pinger to implement Pinger.
type realPingerAdapter struct {
	p *ping.Pinger
}

func (r *realPingerAdapter) Run() error                   { return r.p.Run() }
func (r *realPingerAdapter) Stop()                        { r.p.Stop() }
func (r *realPingerAdapter) Statistics() *ping.Statistics { return r.p.Statistics() }

func (r *realPingerAdapter) SetPrivileged(v bool)        { r.p.SetPrivileged(v) }
func (r *realPingerAdapter) SetCount(c int)              { r.p.Count = c }
func (r *realPingerAdapter) SetInterval(i time.Duration) { r.p.Interval = i }
func (r *realPingerAdapter) SetTimeout(t time.Duration)  { r.p.Timeout = t }
