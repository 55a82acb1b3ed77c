package deps

import (
	"time"

	"github.com/MrSnakeDoc/linkfold/internal/batch"
	"github.com/MrSnakeDoc/linkfold/internal/links"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
	"github.com/MrSnakeDoc/linkfold/internal/resolver"
	"github.com/MrSnakeDoc/linkfold/internal/scheduler"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	AllowedHosts   []string                   // Host headers allowed to reach admin endpoints
	AllowedCIDRS   []string                   // IPs allowed to access readyz/infra/reload
	TrustProxy     bool                       // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins    []string                   // Origins allowed to call /api cross-domain (empty = same-origin only)
	Links          *links.Service             // Record creation, lookup and counters
	Resolver       *resolver.Resolver         // Single-hop resolver, also used by the inspector
	Batch          *batch.Processor           // Table processor behind /api/batch
	StoreKind      string                     // "redis" | "sqlite" | "memory"
	LandingURL     string                     // Where /r/{id} sends unknown ids
	MaxUploadBytes int64                      // Upper bound for /api/batch uploads
	APITimeout     time.Duration              // Per-request deadline for /api routes
	BatchTimeout   time.Duration              // Per-request deadline for /api/batch
	ProfileReload  *scheduler.ProfileReloader // nil when no profile file is configured
	ReloadTrigger  chan struct{}              // Channel to trigger a manual header profile reload
}
