// Package xssstored 演示存储型 XSS：评论不做任何净化直接入库并展示。
// 故意留有漏洞，仅用于安全教学。
package xssstored

import (
	"time"

	"flagdojo_backend/internal/challenge"
	"flagdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const Name = "xss-stored"

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
		Title:      "Comment Board",
		Category:   "XSS",
		Difficulty: "medium",
		Points:     200,
		Summary:    "评论内容未经净化即被存储并展示给所有访问者。",
		Description: "A simple comment board where users can post messages.\n" +
			"All comments are stored in the database and displayed to everyone.\n\n" +
			"**Objective**: Inject JavaScript that will execute for everyone viewing the page.\n" +
			"The flag will appear once you successfully trigger an XSS payload.",
		Flag: "FLAG{st0r3d_xss_1s_p3rs1st3nt}",
		Hints: []string{
			"Try posting a comment with HTML tags like <script>alert(1)</script>",
			"The comments are displayed without proper sanitization",
			"Your payload will be stored in the database and executed for all viewers",
			"Once you get an alert working, the flag is: FLAG{st0r3d_xss_1s_p3rs1st3nt}",
		},
		Order: 3,
	}, dir)
	return c, nil
}

type xssComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:80;not null" json:"username"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (xssComment) TableName() string {
	return "xss_comments"
}

func (c *Challenge) SetupStorage(db *gorm.DB) error {
	c.db = db
	return db.AutoMigrate(&xssComment{})
}

func (c *Challenge) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", c.list)
	rg.POST("/post", c.post)
	rg.POST("/clear", c.clear)
}

// list 返回全部评论，评论内容不做任何转义或过滤
func (c *Challenge) list(ctx *gin.Context) {
	var comments []xssComment
	if err := c.db.Order("created_at desc").Find(&comments).Error; err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"comments": comments})
}

type postRequest struct {
	Username string `form:"username" json:"username"`
	Comment  string `form:"comment" json:"comment"`
}

// post 不净化输入直接入库，这正是本题要暴露的漏洞
func (c *Challenge) post(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, "invalid request body")
		return
	}
	if req.Comment == "" {
		util.BadRequest(ctx, "Comment cannot be empty!")
		return
	}
	if req.Username == "" {
		req.Username = "Anonymous"
	}

	row := xssComment{Username: req.Username, Comment: req.Comment, CreatedAt: time.Now()}
	if err := c.db.Create(&row).Error; err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, row)
}

// clear 清空评论板，便于反复练习
func (c *Challenge) clear(ctx *gin.Context) {
	if err := c.db.Exec("DELETE FROM xss_comments").Error; err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "All comments cleared!"})
}
