package grpcapi

import (
	"context"
	"strings"

	"github.com/KevinKickass/OpenLaundryCore/internal/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TokenValidator checks bearer tokens carried in the "authorization" metadata.
type TokenValidator interface {
	ValidateToken(token string) (*auth.JWTClaims, []auth.Permission, error)
}

var methodPermissions = map[string]auth.Permission{
	MethodStart:        auth.PermOperator,
	MethodListPrograms: auth.PermViewer,
	MethodWatchCycles:  auth.PermViewer,
}

func authorize(ctx context.Context, validator TokenValidator, method string) error {
	required, ok := methodPermissions[method]
	if !ok {
		return nil
	}

	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return status.Error(codes.Unauthenticated, "missing authorization metadata")
	}
	token, found := strings.CutPrefix(values[0], "Bearer ")
	if !found {
		return status.Error(codes.Unauthenticated, "authorization must be a bearer token")
	}

	_, perms, err := validator.ValidateToken(token)
	if err != nil {
		return status.Error(codes.Unauthenticated, "invalid or expired token")
	}
	for _, p := range perms {
		if p == required {
			return nil
		}
	}
	return status.Errorf(codes.PermissionDenied, "missing permission %s", required)
}

// UnaryAuthInterceptor rejects calls without a token granting the method's permission.
func UnaryAuthInterceptor(validator TokenValidator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if err := authorize(ctx, validator, info.FullMethod); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

func StreamAuthInterceptor(validator TokenValidator) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if err := authorize(ss.Context(), validator, info.FullMethod); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}
