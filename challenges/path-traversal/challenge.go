// Package pathtraversal 演示不校验文件名导致的目录穿越读取。
// 故意留有漏洞，仅用于安全教学。
package pathtraversal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"flagdojo_backend/internal/challenge"
	"flagdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const Name = "path-traversal"

const flag = "FLAG{p4th_tr4v3rs4l_1s_d4ng3r0us}"

type Challenge struct {
	challenge.BaseChallenge

	// documents 子目录，样例文件的根
	docsDir string
}

func Register() {
	challenge.Register(Name, New)
}

// New 在插件目录下准备样例文件，并把含 flag 的秘密文件放到
// documents 之外（优先 /tmp），等待被穿越读取。
func New(dir string) (challenge.Challenge, error) {
	c := &Challenge{}
	c.BaseChallenge = challenge.NewBase(challenge.Descriptor{
		Slug:       Name,
		Title:      "File Viewer",
		Category:   "Path Traversal",
		Difficulty: "easy",
		Points:     100,
		Summary:    "ディレクトリトラバーサルを使用してアクセス制限外のファイルを読み取ります。",
		Description: "documentsディレクトリからテキストファイルを表示するシンプルなファイルビューアーアプリケーションです。\n" +
			"ドロップダウンメニューからファイルを選択して内容を表示できます。\n\n" +
			"**目的**:\n" +
			"パストラバーサルを使用して、documentsディレクトリ外の秘密ファイルを読み取ってください。\n" +
			"フラグが含まれている `/tmp/secret.txt` を見つけて読み取ってください。",
		Flag: flag,
		Hints: []string{
			"filenameパラメータが適切に検証されていません",
			"../ を使用してディレクトリを上に移動してみてください",
			"秘密ファイルの場所: ../../../../../../tmp/secret.txt",
			"必要に応じてURLエンコードしてください: ../ は %2e%2e%2f",
		},
		Order: 5,
	}, dir)

	c.docsDir = filepath.Join(dir, "documents")
	if err := c.seedFiles(); err != nil {
		return nil, err
	}
	return c, nil
}

var sampleFiles = map[string]string{
	"welcome.txt": "Welcome to FileViewer Pro!\n\n" +
		"This application allows you to view text files stored in our secure document storage.\n\n" +
		"Select a file from the dropdown menu to view its contents.\n\n" +
		"Thank you for using FileViewer Pro!\n",
	"about.txt": "About FileViewer Pro\n\n" +
		"Version: 1.0.0\nDeveloper: SecureCorp Inc.\nLicense: Proprietary\n\n" +
		"This software is provided as-is without any warranty.\n",
	"help.txt": "FileViewer Pro - Help Documentation\n\n" +
		"How to use:\n" +
		"1. Select a file from the dropdown menu\n" +
		"2. Click \"View File\" to display contents\n" +
		"3. Files are stored in the /documents directory\n\n" +
		"For support, contact: support@securecorp.example\n",
}

func (c *Challenge) seedFiles() error {
	if err := os.MkdirAll(c.docsDir, 0o755); err != nil {
		return err
	}
	for name, content := range sampleFiles {
		path := filepath.Join(c.docsDir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return err
			}
		}
	}

	secret := fmt.Sprintf("CONFIDENTIAL - DO NOT SHARE\n\n"+
		"This is a secret file that should not be accessible through the file viewer.\n\n"+
		"If you're reading this, you've successfully exploited a path traversal vulnerability!\n\n"+
		"Here's your flag: %s\n\n"+
		"Remember: Always validate and sanitize file paths in your applications!\n", flag)

	if err := os.WriteFile("/tmp/secret.txt", []byte(secret), 0o644); err != nil {
		// /tmp 不可写时退回插件目录
		return os.WriteFile(filepath.Join(c.Dir, "secret.txt"), []byte(secret), 0o644)
	}
	return nil
}

func (c *Challenge) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", c.view)
}

// view 直接把用户给的文件名拼进路径，不检查解析结果是否仍在
// documents 目录内，这正是本题要暴露的漏洞。
func (c *Challenge) view(ctx *gin.Context) {
	var available []string
	entries, err := os.ReadDir(c.docsDir)
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				available = append(available, e.Name())
			}
		}
		sort.Strings(available)
	}

	filename := ctx.Query("file")
	resp := gin.H{
		"available_files": available,
		"filename":        filename,
	}

	if filename != "" {
		// 不能用 filepath.Join，它会折叠 ../ 把漏洞修掉
		path := c.docsDir + string(os.PathSeparator) + filename
		content, err := os.ReadFile(path)
		if err != nil {
			resp["error"] = fmt.Sprintf("File not found: %s", filename)
		} else {
			resp["file_content"] = string(content)
		}
	}

	util.Success(ctx, resp)
}
