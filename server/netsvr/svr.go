package netsvr

import (
	"net/http"

	"github.com/zintix-labs/rtplab/server/app"
)

// NetSvr 可被 app 管理啟停的 HTTP 服務
type NetSvr interface {
	NetRouter
	app.Component
}

// NetRouter 只暴露掛路由的能力，handler 與子模組拿不到 Run/Shutdown。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)
	// With 回傳只對接下來註冊的路由生效的 middleware 組合
	With(middlewares ...func(http.Handler) http.Handler) NetRouter

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)

	Group(path string, fn func(NetRouter))
}
