package commandtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"server-warden/internal/access"
	"server-warden/internal/afk"
	"server-warden/internal/command"
	"server-warden/internal/config"
	"server-warden/internal/counting"
	"server-warden/internal/gateway/gatewaytest"
	"server-warden/internal/sticky"
	"server-warden/internal/storage/storagetest"
	"server-warden/pkg/cmd"
	"server-warden/pkg/cooldown"

	"github.com/rs/zerolog"
)

// OwnerID is the bot owner of services built by NewServices.
const OwnerID = "owner-1"

// Colors used by NewServices so tests can tell replies apart.
const (
	SuccessColor = 1
	ErrorColor   = 2
	WarnColor    = 3
	InfoColor    = 4
)

// Jobs collects scheduled work without running it.
type Jobs struct {
	mu    sync.Mutex
	names []string
}

func (j *Jobs) Schedule(name string, _ time.Duration, _ func(ctx context.Context) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.names = append(j.names, name)
	return nil
}

func (j *Jobs) Names() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.names...)
}

// NewServices wires every engine to temp storage and a fake gateway.
func NewServices(t testing.TB) (*command.Services, *gatewaytest.Fake) {
	t.Helper()
	store, _ := storagetest.New(t)
	gw := gatewaytest.New()
	cfg := &config.Config{
		OwnerID:          OwnerID,
		NoticeTTL:        time.Second,
		FeedbackCooldown: time.Minute,
		SuccessColor:     SuccessColor,
		ErrorColor:       ErrorColor,
		WarnColor:        WarnColor,
		InfoColor:        InfoColor,
	}
	logger := zerolog.Nop()

	svc := &command.Services{
		Config:   cfg,
		Store:    store,
		Gate:     access.New(store, OwnerID),
		Counting: counting.New(store, gw, logger),
		Sticky:   sticky.New(store, gw, logger),
		Afk: afk.New(store, gw, &Jobs{}, afk.Options{
			NoticeTTL:    cfg.NoticeTTL,
			SuccessColor: cfg.SuccessColor,
			WarnColor:    cfg.WarnColor,
		}, logger),
		Gateway:  gw,
		Feedback: cooldown.New(cfg.FeedbackCooldown),
		Registry: cmd.NewRegistry(),
		Started:  time.Now(),
		Latency:  func() time.Duration { return 42 * time.Millisecond },
		Log:      logger,
	}
	return svc, gw
}
