package handler

import (
	"net/http"
	"time"

	"haojuleling/app/gateway/api/internal/svc"

	"github.com/go-resty/resty/v2"
	"github.com/zeromicro/go-zero/rest/httpx"
	"golang.org/x/sync/errgroup"
)

const healthTimeout = 2 * time.Second

var healthClient = resty.New().SetTimeout(healthTimeout)

// HealthResp 网关及后端健康状态
type HealthResp struct {
	Status    string            `json:"status"`
	Upstreams map[string]string `json:"upstreams"`
}

// HealthHandler 并发探测后端 /health，任一不可用返回 503
func HealthHandler(ctx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upstreams := ctx.Proxies.All()
		states := make([]string, len(upstreams))

		var g errgroup.Group
		for i, upstream := range upstreams {
			i, upstream := i, upstream
			g.Go(func() error {
				resp, err := healthClient.R().
					SetContext(r.Context()).
					Get(upstream.Target.String() + "/health")
				if err != nil || resp.StatusCode() != http.StatusOK {
					states[i] = "down"
				} else {
					states[i] = "ok"
				}
				return nil
			})
		}
		_ = g.Wait()

		result := HealthResp{Status: "ok", Upstreams: make(map[string]string, len(upstreams))}
		for i, upstream := range upstreams {
			result.Upstreams[upstream.Name] = states[i]
			if states[i] != "ok" {
				result.Status = "degraded"
			}
		}

		if result.Status != "ok" {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusServiceUnavailable, result)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, result)
	}
}
