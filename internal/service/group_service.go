package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
)

const GroupServiceName = "splitledger.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure  = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceGetGroupProcedure     = "/" + GroupServiceName + "/GetGroup"
	GroupServiceListGroupsProcedure   = "/" + GroupServiceName + "/ListGroups"
	GroupServiceUpdateGroupProcedure  = "/" + GroupServiceName + "/UpdateGroup"
	GroupServiceDeleteGroupProcedure  = "/" + GroupServiceName + "/DeleteGroup"
	GroupServiceAddMemberProcedure    = "/" + GroupServiceName + "/AddMember"
	GroupServiceRemoveMemberProcedure = "/" + GroupServiceName + "/RemoveMember"
)

// GroupService handles groups and their rosters. Every procedure requires
// authentication; mount it behind middleware.RequireAuth.
type GroupService struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewGroupService creates a GroupService over l.
func NewGroupService(l *ledger.Ledger, logger *slog.Logger) *GroupService {
	return &GroupService{ledger: l, logger: logger}
}

// NewGroupServiceHandler builds the HTTP handler and returns the path to
// mount it on.
func NewGroupServiceHandler(svc *GroupService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceUpdateGroupProcedure, connect.NewUnaryHandler(GroupServiceUpdateGroupProcedure, svc.UpdateGroup, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	mux.Handle(GroupServiceAddMemberProcedure, connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(GroupServiceRemoveMemberProcedure, connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	return "/" + GroupServiceName + "/", mux
}

// CreateGroup creates a group with the caller as creator and first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[GroupResponse], error) {
	group, err := s.ledger.CreateGroup(ctx, middleware.GetUserID(ctx), ledger.NewGroup{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "CreateGroup", err)
	}
	return connect.NewResponse(&GroupResponse{Group: toGroup(group)}), nil
}

// GetGroup retrieves a group and its roster.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GroupResponse], error) {
	group, err := s.ledger.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(s.logger, "GetGroup", err)
	}
	return connect.NewResponse(&GroupResponse{Group: toGroup(group)}), nil
}

// ListGroups returns the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	groups, err := s.ledger.ListUserGroups(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(s.logger, "ListGroups", err)
	}

	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = toGroup(g)
	}
	return connect.NewResponse(&ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup edits a group's name or description.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[UpdateGroupRequest]) (*connect.Response[GroupResponse], error) {
	group, err := s.ledger.UpdateGroup(ctx, req.Msg.GroupID, ledger.GroupPatch{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
	}, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(s.logger, "UpdateGroup", err)
	}
	return connect.NewResponse(&GroupResponse{Group: toGroup(group)}), nil
}

// DeleteGroup deletes a group. Only its creator may.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[Empty], error) {
	if err := s.ledger.DeleteGroup(ctx, req.Msg.GroupID, middleware.GetUserID(ctx)); err != nil {
		return nil, toConnectError(s.logger, "DeleteGroup", err)
	}
	return connect.NewResponse(&Empty{}), nil
}

// AddMember adds a user to a group the caller belongs to.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error) {
	m, err := s.ledger.AddMember(ctx, req.Msg.GroupID, req.Msg.UserID, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(s.logger, "AddMember", err)
	}
	return connect.NewResponse(&AddMemberResponse{Membership: Membership{
		GroupID:  m.GroupID,
		UserID:   m.UserID,
		JoinedAt: m.JoinedAt,
	}}), nil
}

// RemoveMember removes a user from a group.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[RemoveMemberRequest]) (*connect.Response[Empty], error) {
	if err := s.ledger.RemoveMember(ctx, req.Msg.GroupID, req.Msg.UserID, middleware.GetUserID(ctx)); err != nil {
		return nil, toConnectError(s.logger, "RemoveMember", err)
	}
	return connect.NewResponse(&Empty{}), nil
}
