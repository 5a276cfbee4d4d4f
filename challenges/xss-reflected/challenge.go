// Package xssreflected 演示把用户输入不加转义地回显到 HTML 中。
// 故意留有漏洞，仅用于安全教学。
package xssreflected

import (
	"fmt"
	"net/http"

	"flagdojo_backend/internal/challenge"

	"github.com/gin-gonic/gin"
)

const Name = "xss-reflected"

type Challenge struct {
	challenge.BaseChallenge
}

func Register() {
	challenge.Register(Name, New)
}

func New(dir string) (challenge.Challenge, error) {
	c := &Challenge{}
	c.BaseChallenge = challenge.NewBase(challenge.Descriptor{
		Slug:       Name,
		Title:      "Search XSS",
		Category:   "XSS",
		Difficulty: "easy",
		Points:     100,
		Summary:    "搜索词被原样写回页面，尝试注入脚本。",
		Description: "This search feature directly displays your search query in the results.\n" +
			"Can you inject JavaScript code and make it execute?\n\n" +
			"**Objective**: Trigger an alert box with `alert(document.domain)`.",
		Flag: "FLAG{r3fl3ct3d_xss_1s_d4ng3r0us}",
		Hints: []string{
			"Try searching for: <script>alert(1)</script>",
			"The search term is reflected directly into the HTML without sanitization",
			"Once you get the alert working, submit the flag shown in the challenge description",
		},
		Order: 1,
	}, dir)
	return c, nil
}

func (c *Challenge) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", c.search)
}

// search 把 q 参数原样拼进 HTML，这正是本题要暴露的漏洞。
// 真实代码应该使用 html/template 的自动转义。
func (c *Challenge) search(ctx *gin.Context) {
	term := ctx.Query("q")

	var results string
	if term != "" {
		results = fmt.Sprintf(`<p>No results found for: <strong>%s</strong></p>`, term)
	} else {
		results = `<p>Enter a search term above.</p>`
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Search</title></head>
<body>
<h1>Product Search</h1>
<form method="GET" action="">
  <input type="text" name="q" value="" placeholder="Search products...">
  <button type="submit">Search</button>
</form>
%s
</body>
</html>`, results)

	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
