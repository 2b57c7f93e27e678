package swipe

import (
	"google.golang.org/grpc"

	"github.com/oggyb/muzz-matching/internal/app"
	pb "github.com/oggyb/muzz-matching/internal/proto/swipe"
)

// Registrar ties the Swipe service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Swipe service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Swipe service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	service := NewSwipeService(r.appCtx)
	pb.RegisterSwipeServiceServer(s, service)
}
