// Package csrfattack 演示缺失 CSRF 防护的转账接口。
// 故意留有漏洞，仅用于安全教学。
package csrfattack

import (
	"fmt"
	"time"

	"flagdojo_backend/internal/challenge"
	"flagdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const Name = "csrf-attack"

// 当前用户通过 cookie 模拟会话，默认 alice
const userCookie = "csrf_attack_user"

const defaultBalance = 1000

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
		Title:      "Transfer Funds",
		Category:   "CSRF",
		Difficulty: "medium",
		Points:     200,
		Summary:    "转账接口没有任何 CSRF 防护。",
		Description: "アカウント間で送金ができるシンプルな銀行アプリケーションです。\n" +
			"このアプリケーションには適切なCSRF保護がありません。\n\n" +
			"**目的**: 被害者のアカウントから送金を行うCSRF攻撃を作成してください。\n" +
			"自動的に送金を実行する外部HTMLページを作成する必要があります。",
		Flag: "FLAG{csrf_t0k3ns_4r3_1mp0rt4nt}",
		Hints: []string{
			"送金フォームにはCSRFトークン保護がありません",
			"自動送信する隠しフォームを持つHTMLページを作成できます",
			"method=\"POST\" の <form> とJavaScriptを使って自動送信してみてください",
			"攻撃を理解したら、フラグは: FLAG{csrf_t0k3ns_4r3_1mp0rt4nt}",
		},
		Order: 4,
	}, dir)
	return c, nil
}

type csrfAccount struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Balance  int    `gorm:"not null;default:1000" json:"balance"`
}

func (csrfAccount) TableName() string {
	return "csrf_accounts"
}

type csrfTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FromAccount string    `gorm:"size:80;not null" json:"from_account"`
	ToAccount   string    `gorm:"size:80;not null" json:"to_account"`
	Amount      int       `gorm:"not null" json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

func (csrfTransaction) TableName() string {
	return "csrf_transactions"
}

func (c *Challenge) SetupStorage(db *gorm.DB) error {
	c.db = db
	if err := db.AutoMigrate(&csrfAccount{}, &csrfTransaction{}); err != nil {
		return err
	}
	return c.ensureAccounts()
}

// ensureAccounts 保证三个演示账户存在
func (c *Challenge) ensureAccounts() error {
	for _, name := range []string{"alice", "bob", "attacker"} {
		var count int64
		if err := c.db.Model(&csrfAccount{}).Where("username = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := c.db.Create(&csrfAccount{Username: name, Balance: defaultBalance}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Challenge) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", c.index)
	rg.POST("/transfer", c.transfer)
	rg.GET("/switch/:username", c.switchUser)
	rg.POST("/reset", c.reset)
}

func (c *Challenge) currentUser(ctx *gin.Context) string {
	user, err := ctx.Cookie(userCookie)
	if err != nil || user == "" {
		user = "alice"
		ctx.SetCookie(userCookie, user, 3600, "/", "", false, true)
	}
	return user
}

func (c *Challenge) index(ctx *gin.Context) {
	user := c.currentUser(ctx)

	var account csrfAccount
	if err := c.db.Where("username = ?", user).First(&account).Error; err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	var accounts []csrfAccount
	if err := c.db.Find(&accounts).Error; err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	var transactions []csrfTransaction
	if err := c.db.
		Where("from_account = ? OR to_account = ?", user, user).
		Order("created_at desc").Limit(10).
		Find(&transactions).Error; err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"current_user": user,
		"account":      account,
		"accounts":     accounts,
		"transactions": transactions,
	})
}

type transferRequest struct {
	ToAccount string `form:"to_account" json:"to_account"`
	Amount    int    `form:"amount" json:"amount"`
}

// transfer 不校验任何 CSRF 令牌，凭 cookie 即可转账，
// 这正是本题要暴露的漏洞。
func (c *Challenge) transfer(ctx *gin.Context) {
	user := c.currentUser(ctx)

	var req transferRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, "Missing required fields!")
		return
	}
	if req.ToAccount == "" || req.Amount == 0 {
		util.BadRequest(ctx, "Missing required fields!")
		return
	}
	if req.Amount <= 0 {
		util.BadRequest(ctx, "Amount must be positive!")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		var from, to csrfAccount
		if err := tx.Where("username = ?", user).First(&from).Error; err != nil {
			return err
		}
		if err := tx.Where("username = ?", req.ToAccount).First(&to).Error; err != nil {
			return fmt.Errorf("recipient not found")
		}
		if from.Balance < req.Amount {
			return fmt.Errorf("insufficient funds")
		}

		if err := tx.Model(&from).Update("balance", from.Balance-req.Amount).Error; err != nil {
			return err
		}
		if err := tx.Model(&to).Update("balance", to.Balance+req.Amount).Error; err != nil {
			return err
		}
		return tx.Create(&csrfTransaction{
			FromAccount: user,
			ToAccount:   req.ToAccount,
			Amount:      req.Amount,
			CreatedAt:   time.Now(),
		}).Error
	})
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, gin.H{
		"message": fmt.Sprintf("Successfully transferred $%d to %s!", req.Amount, req.ToAccount),
	})
}

// switchUser 切换当前演示用户，便于验证攻击效果
func (c *Challenge) switchUser(ctx *gin.Context) {
	username := ctx.Param("username")

	var count int64
	if err := c.db.Model(&csrfAccount{}).Where("username = ?", username).Count(&count).Error; err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if count == 0 {
		util.BadRequest(ctx, "User not found!")
		return
	}

	ctx.SetCookie(userCookie, username, 3600, "/", "", false, true)
	util.Success(ctx, gin.H{"message": fmt.Sprintf("Switched to user: %s", username)})
}

// reset 恢复所有账户余额并清空流水
func (c *Challenge) reset(ctx *gin.Context) {
	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&csrfAccount{}).Where("1 = 1").Update("balance", defaultBalance).Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM csrf_transactions").Error
	})
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "All accounts reset to $1000!"})
}
