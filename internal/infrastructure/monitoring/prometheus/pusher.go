package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/turtacn/newdrug-response/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/newdrug-response/pkg/errors"
)

// Pusher sends the gathered metrics of a batch run to a Pushgateway.
type Pusher interface {
	Push(ctx context.Context) error
}

// PushConfig locates the gateway.
type PushConfig struct {
	URL      string
	Job      string
	Timeout  time.Duration
	Grouping map[string]string
}

const defaultPushTimeout = 10 * time.Second

type gatewayPusher struct {
	cfg      PushConfig
	gatherer prometheus.Gatherer
	client   *http.Client
	logger   logging.Logger
}

// NewPusher returns a Pusher that replaces the job's metric group on every
// push.
func NewPusher(cfg PushConfig, gatherer prometheus.Gatherer, logger logging.Logger) (Pusher, error) {
	if cfg.URL == "" {
		return nil, errors.InvalidParam("push gateway url is required")
	}
	if cfg.Job == "" {
		return nil, errors.InvalidParam("push job name is required")
	}
	if gatherer == nil {
		return nil, errors.InvalidParam("gatherer is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPushTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &gatewayPusher{
		cfg:      cfg,
		gatherer: gatherer,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}, nil
}

func (p *gatewayPusher) Push(ctx context.Context) error {
	start := time.Now()
	pusher := push.New(p.cfg.URL, p.cfg.Job).Gatherer(p.gatherer).Client(p.client)
	for name, value := range p.cfg.Grouping {
		pusher = pusher.Grouping(name, value)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return errors.Wrap(err, errors.CodeMetricsPush, "failed to push metrics").WithDetail(p.cfg.URL)
	}

	p.logger.Debug("metrics pushed",
		logging.String("url", p.cfg.URL),
		logging.String("job", p.cfg.Job),
		logging.Duration("duration", time.Since(start)),
	)
	return nil
}

//Personal.AI order the ending
