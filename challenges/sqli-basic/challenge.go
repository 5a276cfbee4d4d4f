// Package sqlibasic 演示通过字符串拼接造成的 SQL 注入登录绕过。
// 故意留有漏洞，仅用于安全教学。
package sqlibasic

import (
	"fmt"
	"net/http"

	"flagdojo_backend/internal/challenge"
	"flagdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Name 必须与插件目录名一致，Loader 按目录名查找构造函数
const Name = "sqli-basic"

const flag = "FLAG{sql_1nj3ct10n_byp4ss}"

type Challenge struct {
	challenge.BaseChallenge
	db *gorm.DB
}

func Register() {
	challenge.Register(Name, New)
}

func New(dir string) (challenge.Challenge, error) {
	c := &Challenge{}
	c.BaseChallenge = challenge.NewBase(challenge.Descriptor{
		Slug:       Name,
		Title:      "Login Bypass",
		Category:   "SQL Injection",
		Difficulty: "easy",
		Points:     100,
		Summary:    "认证逻辑直接拼接 SQL，尝试绕过登录。",
		Description: "A simple login form that checks credentials against a database.\n" +
			"The admin password is unknown, but perhaps you can bypass the authentication?\n\n" +
			"**Objective**: Login as the 'admin' user without knowing the password.",
		Flag: flag,
		Hints: []string{
			"Try entering: admin' --",
			"The SQL query might look like: SELECT * FROM users WHERE username='...' AND password='...'",
			"SQL comments can be used to ignore the rest of the query",
		},
		Order: 2,
	}, dir)
	return c, nil
}

type sqliUser struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"`
	IsAdmin  bool   `gorm:"default:false" json:"is_admin"`
}

func (sqliUser) TableName() string {
	return "sqli_users"
}

// SetupStorage 建表并写入演示账号，管理员密码对玩家不可见
func (c *Challenge) SetupStorage(db *gorm.DB) error {
	c.db = db
	if err := db.AutoMigrate(&sqliUser{}); err != nil {
		return err
	}

	seed := []sqliUser{
		{Username: "admin", Password: "super_secret_password_12345", IsAdmin: true},
		{Username: "user", Password: "password123", IsAdmin: false},
	}
	for _, u := range seed {
		var count int64
		if err := db.Model(&sqliUser{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&u).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Challenge) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", c.index)
	rg.POST("/login", c.login)
	rg.POST("/reset", c.reset)
}

func (c *Challenge) index(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"title":  c.Meta.Title,
		"prompt": "POST /login with form fields username and password",
	})
}

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// login 故意用 fmt.Sprintf 拼接查询，这正是本题要暴露的漏洞。
// 真实代码永远应该使用参数化查询。
func (c *Challenge) login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, "invalid request body")
		return
	}

	query := fmt.Sprintf(
		"SELECT id, username, is_admin FROM sqli_users WHERE username='%s' AND password='%s'",
		req.Username, req.Password,
	)

	var row sqliUser
	err := c.db.Raw(query).Scan(&row).Error
	if err != nil {
		ctx.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": fmt.Sprintf("Error: %v", err),
		})
		return
	}

	if row.ID == 0 {
		ctx.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Invalid username or password",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Success! Welcome %s! The flag is: %s", req.Username, flag),
	})
}

// reset 把演示表恢复到初始状态
func (c *Challenge) reset(ctx *gin.Context) {
	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM sqli_users").Error; err != nil {
			return err
		}
		seed := []sqliUser{
			{Username: "admin", Password: "super_secret_password_12345", IsAdmin: true},
			{Username: "user", Password: "password123", IsAdmin: false},
		}
		return tx.Create(&seed).Error
	})
	if err != nil {
		util.InternalServerError(ctx)
		return
	}
	util.Success(ctx, gin.H{"message": "Database reset successful"})
}
