package handler

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/core/service"
)

const catalogServiceName = "cartec.catalog.v1.CatalogService"

type ListCarsRequest struct {
	Query    string `json:"query"`
	FuelType string `json:"fuelType"`
}

type ListCarsResponse struct {
	State string        `json:"state"`
	Cars  []CarResponse `json:"cars"`
}

type GetCarRequest struct {
	ID string `json:"id"`
}

// CatalogServer is the read-only catalog service exposed over gRPC.
type CatalogServer interface {
	ListCars(ctx context.Context, req *ListCarsRequest) (*ListCarsResponse, error)
	GetCar(ctx context.Context, req *GetCarRequest) (*CarResponse, error)
}

type GRPCHandler struct {
	catalog *service.Catalog
	cars    *service.CarService
	logger  *zap.Logger
}

func NewGRPCHandler(catalog *service.Catalog, cars *service.CarService, logger *zap.Logger) *GRPCHandler {
	return &GRPCHandler{catalog: catalog, cars: cars, logger: logger}
}

func (h *GRPCHandler) ListCars(ctx context.Context, req *ListCarsRequest) (*ListCarsResponse, error) {
	fuel := req.FuelType
	if fuel == "" {
		fuel = domain.FuelAll
	}
	if fuel != domain.FuelAll && !domain.FuelType(fuel).Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown fuel type %q", fuel)
	}

	view := h.catalog.Snapshot()
	return &ListCarsResponse{
		State: view.State.String(),
		Cars:  toResponses(domain.Filter(view.Cars, req.Query, fuel)),
	}, nil
}

func (h *GRPCHandler) GetCar(ctx context.Context, req *GetCarRequest) (*CarResponse, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	car, err := h.cars.GetCar(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "car not found")
		}
		h.logger.Error("grpc GetCar failed", zap.String("id", req.ID), zap.Error(err))
		return nil, status.Error(codes.Unavailable, "catalog unavailable")
	}
	resp := toResponse(car)
	return &resp, nil
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: catalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListCars", Handler: listCarsHandler},
		{MethodName: "GetCar", Handler: getCarHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func listCarsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListCarsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).ListCars(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + catalogServiceName + "/ListCars"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).ListCars(ctx, req.(*ListCarsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getCarHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetCarRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).GetCar(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + catalogServiceName + "/GetCar"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).GetCar(ctx, req.(*GetCarRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// CatalogClient calls CatalogServer over a connection using the JSON codec.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func (c *CatalogClient) ListCars(ctx context.Context, in *ListCarsRequest, opts ...grpc.CallOption) (*ListCarsResponse, error) {
	out := new(ListCarsResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+catalogServiceName+"/ListCars", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) GetCar(ctx context.Context, in *GetCarRequest, opts ...grpc.CallOption) (*CarResponse, error) {
	out := new(CarResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+catalogServiceName+"/GetCar", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// UnaryLogger logs every call at debug level and failures at warn.
func UnaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("gRPC call failed", zap.String("method", info.FullMethod), zap.Error(err))
		} else {
			logger.Debug("gRPC call", zap.String("method", info.FullMethod))
		}
		return resp, err
	}
}
