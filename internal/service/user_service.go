package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
)

const UserServiceName = "splitledger.v1.UserService"

const (
	UserServiceRegisterProcedure          = "/" + UserServiceName + "/Register"
	UserServiceLoginProcedure             = "/" + UserServiceName + "/Login"
	UserServiceGetCurrentUserProcedure    = "/" + UserServiceName + "/GetCurrentUser"
	UserServiceGetUserProcedure           = "/" + UserServiceName + "/GetUser"
	UserServiceUpdateCurrentUserProcedure = "/" + UserServiceName + "/UpdateCurrentUser"
)

// UserService handles registration, login and profiles. Register and Login
// are public; mount it behind middleware.OptionalAuth.
type UserService struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewUserService creates a UserService over l.
func NewUserService(l *ledger.Ledger, logger *slog.Logger) *UserService {
	return &UserService{ledger: l, logger: logger}
}

// NewUserServiceHandler builds the HTTP handler and returns the path to
// mount it on.
func NewUserServiceHandler(svc *UserService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(UserServiceRegisterProcedure, connect.NewUnaryHandler(UserServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(UserServiceLoginProcedure, connect.NewUnaryHandler(UserServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(UserServiceGetCurrentUserProcedure, connect.NewUnaryHandler(UserServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...))
	mux.Handle(UserServiceGetUserProcedure, connect.NewUnaryHandler(UserServiceGetUserProcedure, svc.GetUser, opts...))
	mux.Handle(UserServiceUpdateCurrentUserProcedure, connect.NewUnaryHandler(UserServiceUpdateCurrentUserProcedure, svc.UpdateCurrentUser, opts...))
	return "/" + UserServiceName + "/", mux
}

// Register creates a new account.
func (s *UserService) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[UserResponse], error) {
	user, err := s.ledger.CreateUser(ctx, ledger.NewUser{
		Email:       req.Msg.Email,
		DisplayName: req.Msg.DisplayName,
		Password:    req.Msg.Password,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "Register", err)
	}
	return connect.NewResponse(&UserResponse{User: toUser(user)}), nil
}

// Login exchanges credentials for a bearer token.
func (s *UserService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	session, err := s.ledger.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		return nil, toConnectError(s.logger, "Login", err)
	}

	s.logger.Info("User logged in", "user_id", session.User.ID)
	return connect.NewResponse(&LoginResponse{
		Token: session.Token,
		User:  toUser(session.User),
	}), nil
}

// GetCurrentUser returns the caller's profile.
func (s *UserService) GetCurrentUser(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[UserResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.ledger.GetUser(ctx, userID)
	if err != nil {
		return nil, toConnectError(s.logger, "GetCurrentUser", err)
	}
	return connect.NewResponse(&UserResponse{User: toUser(user)}), nil
}

// GetUser returns another user's public profile.
func (s *UserService) GetUser(ctx context.Context, req *connect.Request[GetUserRequest]) (*connect.Response[UserResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}

	user, err := s.ledger.GetUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError(s.logger, "GetUser", err)
	}
	return connect.NewResponse(&UserResponse{User: toUser(user)}), nil
}

// UpdateCurrentUser edits the caller's own profile.
func (s *UserService) UpdateCurrentUser(ctx context.Context, req *connect.Request[UpdateCurrentUserRequest]) (*connect.Response[UserResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.ledger.UpdateUser(ctx, userID, ledger.UserPatch{
		Email:       req.Msg.Email,
		DisplayName: req.Msg.DisplayName,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "UpdateCurrentUser", err)
	}
	return connect.NewResponse(&UserResponse{User: toUser(user)}), nil
}
