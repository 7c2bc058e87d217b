package service

import (
	"context"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	"github.com/brokerdesk/brokerdesk/internal/auth"
	domainAuth "github.com/brokerdesk/brokerdesk/internal/domain/auth"
	"github.com/brokerdesk/brokerdesk/internal/domain/user"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// UserService handles registration, login and account administration.
type UserService interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RequestPasswordRecovery(ctx context.Context, req *dto.PasswordRecoveryRequest) error

	GetUser(ctx context.Context, id string) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, filter *types.UserFilter) (*dto.ListUsersResponse, error)
	UpdateUser(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)

	AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest) (*dto.UserResponse, error)
	SetSuspended(ctx context.Context, id string, req *dto.SuspendUserRequest) (*dto.UserResponse, error)
}

type userService struct {
	ServiceParams
}

// NewUserService creates a new user service.
func NewUserService(params ServiceParams) UserService {
	return &userService{ServiceParams: params}
}

// SignUp registers the identity with the auth provider, then persists
// the user row and credential record together.
func (s *userService) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AuthResponse, error) {
	if existing, err := s.UserRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, ierr.NewError("email already registered").
			WithHint("An account with this email already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	authResp, err := s.AuthProvider.SignUp(ctx, auth.AuthRequest{
		Email:    req.Email,
		Password: req.Password,
		Token:    req.Token,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	newUser := &user.User{
		ID:        authResp.ID,
		Email:     req.Email,
		FullName:  req.FullName,
		Role:      types.UserRoleCustomer,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	newUser.CreatedBy = newUser.ID
	newUser.UpdatedBy = newUser.ID
	if err := newUser.Validate(); err != nil {
		return nil, err
	}

	credentials := &domainAuth.Auth{
		UserID:    newUser.ID,
		Provider:  s.AuthProvider.GetProvider(),
		Token:     authResp.ProviderToken,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.UserRepo.Create(txCtx, newUser); err != nil {
			return err
		}
		return s.AuthRepo.CreateAuth(txCtx, credentials)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("registered user", "user_id", newUser.ID, "email", newUser.Email)

	return &dto.AuthResponse{
		Token:  authResp.AuthToken,
		UserID: newUser.ID,
		Email:  newUser.Email,
		Role:   newUser.Role,
	}, nil
}

func (s *userService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	existing, err := s.UserRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("invalid credentials").
				WithHint("Invalid email or password").
				Mark(ierr.ErrPermissionDenied)
		}
		return nil, err
	}
	if existing.Suspended {
		return nil, ierr.NewError("account suspended").
			WithHint("This account has been suspended, contact support").
			Mark(ierr.ErrPermissionDenied)
	}

	var authInfo *domainAuth.Auth
	if s.AuthProvider.GetProvider() == types.AuthProviderLocal {
		authInfo, err = s.AuthRepo.GetAuthByUserID(ctx, existing.ID)
		if err != nil {
			if ierr.IsNotFound(err) {
				return nil, ierr.NewError("invalid credentials").
					WithHint("Invalid email or password").
					Mark(ierr.ErrPermissionDenied)
			}
			return nil, err
		}
	}

	authResp, err := s.AuthProvider.Login(ctx, auth.AuthRequest{
		Email:    req.Email,
		Password: req.Password,
	}, authInfo)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token:  authResp.AuthToken,
		UserID: existing.ID,
		Email:  existing.Email,
		Role:   existing.Role,
	}, nil
}

// RequestPasswordRecovery never leaks whether an email is registered.
func (s *userService) RequestPasswordRecovery(ctx context.Context, req *dto.PasswordRecoveryRequest) error {
	if _, err := s.UserRepo.GetByEmail(ctx, req.Email); err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Debugw("recovery requested for unknown email", "email", req.Email)
			return nil
		}
		return err
	}
	return s.AuthProvider.RequestPasswordRecovery(ctx, req.Email)
}

func (s *userService) GetUser(ctx context.Context, id string) (*dto.UserResponse, error) {
	if !types.GetUserRole(ctx).IsStaff() && id != types.GetUserID(ctx) {
		return nil, ierr.NewError("access denied").
			WithHint("You do not have access to this user").
			Mark(ierr.ErrPermissionDenied)
	}
	u, err := s.UserRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.UserResponse{User: u}, nil
}

func (s *userService) ListUsers(ctx context.Context, filter *types.UserFilter) (*dto.ListUsersResponse, error) {
	if filter == nil {
		filter = types.NewUserFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	users, err := s.UserRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.UserRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.UserResponse, len(users))
	for i, u := range users {
		items[i] = &dto.UserResponse{User: u}
	}
	return &dto.ListUsersResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if !types.GetUserRole(ctx).IsStaff() && id != types.GetUserID(ctx) {
		return nil, ierr.NewError("access denied").
			WithHint("You do not have access to this user").
			Mark(ierr.ErrPermissionDenied)
	}

	u, err := s.UserRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.BillingAddress != nil {
		u.BillingAddress = *req.BillingAddress
	}
	if req.Metadata != nil {
		u.Metadata = req.Metadata
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	u.UpdatedAt = time.Now().UTC()
	u.UpdatedBy = types.GetUserID(ctx)
	if err := s.UserRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return &dto.UserResponse{User: u}, nil
}

// AssignRole changes a user's role. An admin can never remove their
// own admin role; locking every admin out is otherwise one bad click
// away.
func (s *userService) AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest) (*dto.UserResponse, error) {
	if err := req.Role.Validate(); err != nil {
		return nil, err
	}

	callerID := types.GetUserID(ctx)
	if id == callerID && req.Role != types.UserRoleAdmin {
		return nil, ierr.NewError("self demotion rejected").
			WithHint("You cannot remove your own admin role").
			Mark(ierr.ErrInvalidOperation)
	}

	u, err := s.UserRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Role = req.Role
	u.UpdatedAt = time.Now().UTC()
	u.UpdatedBy = callerID
	if err := s.UserRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	// Best effort: keep the provider's token metadata in sync.
	if err := s.AuthProvider.SetUserRole(ctx, u.ID, u.Role); err != nil {
		s.Logger.Warnw("failed to sync role to auth provider",
			"user_id", u.ID, "role", u.Role, "error", err)
	}

	s.Logger.Infow("assigned role", "user_id", u.ID, "role", u.Role, "assigned_by", callerID)
	return &dto.UserResponse{User: u}, nil
}

func (s *userService) SetSuspended(ctx context.Context, id string, req *dto.SuspendUserRequest) (*dto.UserResponse, error) {
	if id == types.GetUserID(ctx) && req.Suspended {
		return nil, ierr.NewError("self suspension rejected").
			WithHint("You cannot suspend your own account").
			Mark(ierr.ErrInvalidOperation)
	}

	u, err := s.UserRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Suspended = req.Suspended
	u.UpdatedAt = time.Now().UTC()
	u.UpdatedBy = types.GetUserID(ctx)
	if err := s.UserRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.Logger.Infow("changed suspension",
		"user_id", u.ID,
		"suspended", u.Suspended,
		"changed_by", types.GetUserID(ctx),
	)
	return &dto.UserResponse{User: u}, nil
}
