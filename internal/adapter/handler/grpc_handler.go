package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/sofa-configurator/internal/core/domain"
	"github.com/rl1809/sofa-configurator/internal/core/service"
)

const (
	serviceName         = "configurator.v1.Configurator"
	configureMethodPath = "/" + serviceName + "/Configure"
	validateMethodPath  = "/" + serviceName + "/Validate"
)

type ConfigureRequest struct {
	Material string   `json:"material"`
	Color    string   `json:"color"`
	Size     string   `json:"size"`
	Addons   []string `json:"addons,omitempty"`

	// raw is the decoded wire object, unknown keys included.
	raw map[string]any
}

// UnmarshalJSON keeps the whole object so the validator sees every key the
// caller sent, not only the ones this struct declares.
func (r *ConfigureRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = ConfigureRequest{raw: raw}
	r.Material, _ = raw["material"].(string)
	r.Color, _ = raw["color"].(string)
	r.Size, _ = raw["size"].(string)
	if list, ok := raw["addons"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				r.Addons = append(r.Addons, s)
			}
		}
	}
	return nil
}

// payload maps the request onto the same shape an HTTP body decodes to, so
// both transports share one validation path.
func (r *ConfigureRequest) payload() map[string]any {
	if r.raw != nil {
		return r.raw
	}
	p := map[string]any{
		"material": r.Material,
		"color":    r.Color,
		"size":     r.Size,
	}
	if r.Addons != nil {
		p["addons"] = r.Addons
	}
	return p
}

type ConfigureResponse struct {
	Success       bool                     `json:"success"`
	Message       string                   `json:"message,omitempty"`
	Violations    []domain.Violation       `json:"violations,omitempty"`
	Configuration *domain.Configuration    `json:"configuration,omitempty"`
	Pricing       *domain.PricingBreakdown `json:"pricing,omitempty"`
}

type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	Errors string `json:"errors,omitempty"`
}

// ConfiguratorServer is the gRPC service contract.
type ConfiguratorServer interface {
	Configure(ctx context.Context, req *ConfigureRequest) (*ConfigureResponse, error)
	Validate(ctx context.Context, req *ConfigureRequest) (*ValidateResponse, error)
}

type GRPCHandler struct {
	configurator Configurator
	logger       *zap.Logger
}

func NewGRPCHandler(configurator Configurator, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandler{configurator: configurator, logger: logger}
}

// Configure reports rejected configurations in-band with Success false;
// only infrastructure failures surface as gRPC errors.
func (h *GRPCHandler) Configure(ctx context.Context, req *ConfigureRequest) (*ConfigureResponse, error) {
	if req == nil {
		req = &ConfigureRequest{}
	}

	result, err := h.configurator.Configure(ctx, req.payload())
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return &ConfigureResponse{
				Success:    false,
				Message:    verr.Error(),
				Violations: verr.Violations,
			}, nil
		}
		return nil, h.toStatus(err)
	}

	return &ConfigureResponse{
		Success:       true,
		Configuration: &result.Configuration,
		Pricing:       &result.Pricing,
	}, nil
}

func (h *GRPCHandler) Validate(ctx context.Context, req *ConfigureRequest) (*ValidateResponse, error) {
	if req == nil {
		req = &ConfigureRequest{}
	}

	result, err := h.configurator.Validate(ctx, req.payload())
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ValidateResponse{Valid: result.Valid, Errors: result.Errors}, nil
}

func (h *GRPCHandler) toStatus(err error) error {
	if errors.Is(err, service.ErrCatalogUnavailable) {
		return status.Error(codes.Unavailable, "catalog unavailable")
	}
	h.logger.Error("grpc request failed", zap.Error(err))
	return status.Error(codes.Internal, "internal server error")
}

func RegisterConfiguratorServer(s grpc.ServiceRegistrar, srv ConfiguratorServer) {
	s.RegisterService(&configuratorServiceDesc, srv)
}

var configuratorServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ConfiguratorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Configure", Handler: configureHandler},
		{MethodName: "Validate", Handler: validateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "configurator/v1/configurator.proto",
}

func configureHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ConfigureRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConfiguratorServer).Configure(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: configureMethodPath}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ConfiguratorServer).Configure(ctx, req.(*ConfigureRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func validateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ConfigureRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConfiguratorServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: validateMethodPath}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ConfiguratorServer).Validate(ctx, req.(*ConfigureRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ConfiguratorClient calls the service with the JSON content-subtype.
type ConfiguratorClient struct {
	cc grpc.ClientConnInterface
}

func NewConfiguratorClient(cc grpc.ClientConnInterface) *ConfiguratorClient {
	return &ConfiguratorClient{cc: cc}
}

func (c *ConfiguratorClient) Configure(ctx context.Context, in *ConfigureRequest, opts ...grpc.CallOption) (*ConfigureResponse, error) {
	out := new(ConfigureResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, configureMethodPath, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ConfiguratorClient) Validate(ctx context.Context, in *ConfigureRequest, opts ...grpc.CallOption) (*ValidateResponse, error) {
	out := new(ValidateResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, validateMethodPath, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// UnaryLogger logs each unary call with its code and latency.
func UnaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}
		if code == codes.Internal || code == codes.Unavailable {
			logger.Error("grpc request", fields...)
		} else {
			logger.Info("grpc request", fields...)
		}
		return resp, err
	}
}
