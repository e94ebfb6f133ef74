package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFiles embed.FS

// IndexHTML 首页内容
func IndexHTML() ([]byte, error) {
	return staticFiles.ReadFile("static/index.html")
}

// StaticFS 静态资源文件系统，根目录为 static/
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// static 目录随二进制嵌入，不会缺失
		panic(err)
	}
	return http.FS(sub)
}
