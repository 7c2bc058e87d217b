package service

import (
	"testing"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	"github.com/brokerdesk/brokerdesk/internal/auth"
	"github.com/brokerdesk/brokerdesk/internal/domain/user"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/testutil"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	userService UserService
}

func TestUserService(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		DB:           s.GetDB(),
		Cache:        s.GetCache(),
		UserRepo:     s.GetStores().User,
		AuthRepo:     s.GetStores().Auth,
		AuthProvider: auth.NewLocalAuth(s.GetConfig()),
	}
	s.userService = NewUserService(params)
}

func (s *UserServiceTestSuite) signUp(email, password, fullName string) *dto.AuthResponse {
	resp, err := s.userService.SignUp(s.GetContext(), &dto.SignUpRequest{
		Email:    email,
		Password: password,
		FullName: fullName,
	})
	s.Require().NoError(err)
	return resp
}

func (s *UserServiceTestSuite) TestSignUpAndLogin() {
	resp := s.signUp("alice@example.com", "hunter2hunter2", "Alice")
	s.NotEmpty(resp.UserID)
	s.NotEmpty(resp.Token)
	s.Equal(types.UserRoleCustomer, resp.Role)

	login, err := s.userService.Login(s.GetContext(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	s.Require().NoError(err)
	s.Equal(resp.UserID, login.UserID)
	s.NotEmpty(login.Token)
}

func (s *UserServiceTestSuite) TestSignUpDuplicateEmail() {
	s.signUp("alice@example.com", "hunter2hunter2", "Alice")

	_, err := s.userService.SignUp(s.GetContext(), &dto.SignUpRequest{
		Email:    "alice@example.com",
		Password: "different-pass",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *UserServiceTestSuite) TestLoginWrongPassword() {
	s.signUp("alice@example.com", "hunter2hunter2", "Alice")

	_, err := s.userService.Login(s.GetContext(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	s.Error(err)
}

func (s *UserServiceTestSuite) TestLoginUnknownEmailIsGeneric() {
	_, err := s.userService.Login(s.GetContext(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	var internal *ierr.InternalError
	s.Require().ErrorAs(err, &internal)
	// The hint must not reveal whether the email exists.
	s.Equal("Invalid email or password", internal.Hint())
}

func (s *UserServiceTestSuite) TestSuspendedUserCannotLogin() {
	resp := s.signUp("alice@example.com", "hunter2hunter2", "Alice")

	u, err := s.GetStores().User.Get(s.GetContext(), resp.UserID)
	s.Require().NoError(err)
	u.Suspended = true
	s.Require().NoError(s.GetStores().User.Update(s.GetContext(), u))

	_, err = s.userService.Login(s.GetContext(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *UserServiceTestSuite) TestRecoveryForUnknownEmailStaysQuiet() {
	err := s.userService.RequestPasswordRecovery(s.GetContext(), &dto.PasswordRecoveryRequest{
		Email: "nobody@example.com",
	})
	s.NoError(err)
}

func (s *UserServiceTestSuite) TestCustomerCannotReadForeignUser() {
	resp := s.signUp("alice@example.com", "hunter2hunter2", "Alice")

	s.SetContextUser("user_stranger", types.UserRoleCustomer)
	_, err := s.userService.GetUser(s.GetContext(), resp.UserID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	// Staff can.
	s.SetContextUser("user_support", types.UserRoleSupport)
	got, err := s.userService.GetUser(s.GetContext(), resp.UserID)
	s.Require().NoError(err)
	s.Equal("alice@example.com", got.Email)
}

func (s *UserServiceTestSuite) TestUpdateOwnProfile() {
	resp := s.signUp("alice@example.com", "hunter2hunter2", "Alice")
	s.SetContextUser(resp.UserID, types.UserRoleCustomer)

	updated, err := s.userService.UpdateUser(s.GetContext(), resp.UserID, &dto.UpdateUserRequest{
		FullName: lo.ToPtr("Alice B."),
		Phone:    lo.ToPtr("+4915112345678"),
	})
	s.Require().NoError(err)
	s.Equal("Alice B.", updated.FullName)
	s.Equal("+4915112345678", updated.Phone)
}

func (s *UserServiceTestSuite) TestAdminCannotDemoteThemselves() {
	admin := &user.User{
		ID:        "user_admin_1",
		Email:     "admin@example.com",
		Role:      types.UserRoleAdmin,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().User.Create(s.GetContext(), admin))
	s.SetContextUser(admin.ID, types.UserRoleAdmin)

	_, err := s.userService.AssignRole(s.GetContext(), admin.ID, &dto.AssignRoleRequest{
		Role: types.UserRoleCustomer,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// Re-asserting their own admin role is fine.
	resp, err := s.userService.AssignRole(s.GetContext(), admin.ID, &dto.AssignRoleRequest{
		Role: types.UserRoleAdmin,
	})
	s.NoError(err)
	s.Equal(types.UserRoleAdmin, resp.Role)
}

func (s *UserServiceTestSuite) TestAssignRolePromotesUser() {
	created := s.signUp("alice@example.com", "hunter2hunter2", "Alice")
	s.SetContextUser("user_admin_1", types.UserRoleAdmin)

	resp, err := s.userService.AssignRole(s.GetContext(), created.UserID, &dto.AssignRoleRequest{
		Role: types.UserRoleSupport,
	})
	s.Require().NoError(err)
	s.Equal(types.UserRoleSupport, resp.Role)
}

func (s *UserServiceTestSuite) TestAssignRoleRejectsUnknownRole() {
	created := s.signUp("alice@example.com", "hunter2hunter2", "Alice")
	s.SetContextUser("user_admin_1", types.UserRoleAdmin)

	_, err := s.userService.AssignRole(s.GetContext(), created.UserID, &dto.AssignRoleRequest{
		Role: "superuser",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *UserServiceTestSuite) TestAdminCannotSuspendThemselves() {
	admin := &user.User{
		ID:        "user_admin_1",
		Email:     "admin@example.com",
		Role:      types.UserRoleAdmin,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().User.Create(s.GetContext(), admin))
	s.SetContextUser(admin.ID, types.UserRoleAdmin)

	_, err := s.userService.SetSuspended(s.GetContext(), admin.ID, &dto.SuspendUserRequest{Suspended: true})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *UserServiceTestSuite) TestSuspendAndRestore() {
	created := s.signUp("alice@example.com", "hunter2hunter2", "Alice")
	s.SetContextUser("user_admin_1", types.UserRoleAdmin)

	resp, err := s.userService.SetSuspended(s.GetContext(), created.UserID, &dto.SuspendUserRequest{Suspended: true})
	s.Require().NoError(err)
	s.True(resp.Suspended)

	resp, err = s.userService.SetSuspended(s.GetContext(), created.UserID, &dto.SuspendUserRequest{Suspended: false})
	s.Require().NoError(err)
	s.False(resp.Suspended)
}

func (s *UserServiceTestSuite) TestListUsersWithSearch() {
	s.signUp("alice@example.com", "hunter2hunter2", "Alice Smith")
	s.signUp("bob@example.com", "hunter2hunter2", "Bob Jones")

	filter := types.NewUserFilter()
	filter.Search = "alice"
	resp, err := s.userService.ListUsers(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Require().Len(resp.Items, 1)
	s.Equal("alice@example.com", resp.Items[0].Email)
	s.Equal(1, resp.Pagination.Total)
}
