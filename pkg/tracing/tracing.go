package tracing

import (
	"fmt"

	"github.com/opentracing/opentracing-go"
	jCfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"

	"scalper_bot/pkg/logger"
)

// Config: адрес jaeger-агента и имя сервиса в трейсах.
type Config struct {
	ServiceName string
	Host        string
	Port        int
}

func (c Config) agentAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// InitTracer ставит глобальный трейсер (спаны strategy.cycle, lifecycle.open)
// и возвращает функцию его закрытия.
func InitTracer(conf Config) (opentracing.Tracer, func(), error) {
	if conf.ServiceName == "" {
		return nil, nil, fmt.Errorf("tracing: empty service name")
	}
	cfg := &jCfg.Configuration{
		ServiceName: conf.ServiceName,
		Sampler: &jCfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &jCfg.ReporterConfig{
			LogSpans:           false,
			LocalAgentHostPort: conf.agentAddr(),
		},
	}

	tracer, closer, err := cfg.NewTracer(jCfg.Metrics(metrics.NullFactory))
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: new tracer %s: %w", conf.agentAddr(), err)
	}

	opentracing.SetGlobalTracer(tracer)
	logger.Info("[TRACING] jaeger agent %s, service %s", conf.agentAddr(), conf.ServiceName)
	return tracer, func() {
		if err := closer.Close(); err != nil {
			logger.Error("[TRACING] close: %v", err)
		}
	}, nil
}
