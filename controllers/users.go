package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BerniceZTT/salesiq/models"
	"github.com/BerniceZTT/salesiq/service"
	"github.com/BerniceZTT/salesiq/utils"
)

// GetUsers 获取用户列表
func GetUsers(c *gin.Context) {
	q := service.UserQuery{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Status: c.Query("status"),
		SortBy: c.DefaultQuery("sortBy", "name"),
		Order:  service.ParseOrder(c.Query("order")),
	}
	if !service.UserSortFields[q.SortBy] {
		utils.HandleError(c, utils.CreateBadRequestError("不支持的排序字段: "+q.SortBy))
		return
	}

	users, err := store().ListUsers(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	filtered := service.FilterUsers(users, q)
	utils.ListResponse(c, "users", filtered, len(filtered))
}

// GetUserStats 获取用户概览统计
func GetUserStats(c *gin.Context) {
	users, err := store().ListUsers(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, service.UserStatsOf(users), "")
}

// GetRoleOverview 获取各角色的权限概览
func GetRoleOverview(c *gin.Context) {
	utils.SuccessResponse(c, utils.RoleOverviews(), "")
}

// emailTaken 邮箱是否已被其他用户使用
func emailTaken(c *gin.Context, email, exceptID string) (bool, error) {
	users, err := store().ListUsers(c.Request.Context())
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// CreateUser 创建新用户
func CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.HandleError(c, utils.CreateBadRequestError("姓名不能为空"))
		return
	}
	if !models.IsValidUserRole(req.Role) {
		utils.HandleError(c, utils.CreateBadRequestError("无效的用户角色"))
		return
	}
	if req.Phone != "" && !utils.IsValidPhone(req.Phone) {
		utils.HandleError(c, utils.CreateBadRequestError("手机号格式不正确"))
		return
	}

	taken, err := emailTaken(c, req.Email, "")
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if taken {
		utils.HandleError(c, utils.CreateConflictError("邮箱已被使用"))
		return
	}

	permissions := utils.DefaultPermissions(req.Role)
	if req.Permissions != nil {
		permissions = *req.Permissions
	}
	user := models.User{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Phone:       req.Phone,
		Role:        req.Role,
		Department:  req.Department,
		IsActive:    true,
		Permissions: permissions,
	}
	if err := store().SaveUser(c.Request.Context(), user); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Logger.Info().Str("userId", user.ID).Str("role", string(user.Role)).Msg("用户创建成功")
	utils.SuccessResponse(c, user, "用户创建成功", http.StatusCreated)
}

// UpdateUser 更新用户信息，角色变化且未指定权限时使用新角色的默认权限
func UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		utils.HandleError(c, utils.CreateBadRequestError("姓名不能为空"))
		return
	}
	if req.Phone != nil && *req.Phone != "" && !utils.IsValidPhone(*req.Phone) {
		utils.HandleError(c, utils.CreateBadRequestError("手机号格式不正确"))
		return
	}
	if req.Role != nil && !models.IsValidUserRole(*req.Role) {
		utils.HandleError(c, utils.CreateBadRequestError("无效的用户角色"))
		return
	}
	if req.Email != nil {
		taken, err := emailTaken(c, *req.Email, id)
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		if taken {
			utils.HandleError(c, utils.CreateConflictError("邮箱已被使用"))
			return
		}
	}

	user, err := store().UpdateUser(c.Request.Context(), id, func(user *models.User) error {
		if req.Name != nil {
			user.Name = strings.TrimSpace(*req.Name)
		}
		if req.Email != nil {
			user.Email = strings.TrimSpace(*req.Email)
		}
		if req.Phone != nil {
			user.Phone = *req.Phone
		}
		if req.Department != nil {
			user.Department = *req.Department
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		if req.Role != nil {
			if *req.Role != user.Role && req.Permissions == nil {
				user.Permissions = utils.DefaultPermissions(*req.Role)
			}
			user.Role = *req.Role
		}
		if req.Permissions != nil {
			user.Permissions = *req.Permissions
		}
		return nil
	})
	if err != nil {
		handleStoreError(c, err, "用户")
		return
	}
	utils.SuccessResponse(c, user, "用户更新成功")
}

// ToggleUserStatus 启用或停用用户
func ToggleUserStatus(c *gin.Context) {
	user, err := store().UpdateUser(c.Request.Context(), c.Param("id"), func(user *models.User) error {
		user.IsActive = !user.IsActive
		return nil
	})
	if err != nil {
		handleStoreError(c, err, "用户")
		return
	}

	message := "用户已停用"
	if user.IsActive {
		message = "用户已启用"
	}
	utils.SuccessResponse(c, user, message)
}

// DeleteUser 删除用户，需要 confirm=true
func DeleteUser(c *gin.Context) {
	if !requireConfirm(c, "用户") {
		return
	}
	if err := store().DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		handleStoreError(c, err, "用户")
		return
	}
	utils.SuccessResponse(c, nil, "用户删除成功")
}
