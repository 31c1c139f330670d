package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS 允許瀏覽器端（報價頁、模擬面板）跨域呼叫 API
//
// origins 為空時允許所有來源
func CORS(origins ...string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Accept-Encoding"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	})
}
