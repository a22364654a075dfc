package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	getsettings "printshop/http-server/admin/get"
	"printshop/http-server/admin/provision"
	"printshop/http-server/admin/update"
	getmaterials "printshop/http-server/materials/get"
	"printshop/http-server/pricing/calculate"
	"printshop/http-server/pricing/export"
	getproduct "printshop/http-server/products/get"
	"printshop/internal/config"
	"printshop/internal/middleware/auth"
	generate_excel "printshop/internal/service/generate-excel"
	"printshop/internal/service/pricing"
	provisionservice "printshop/internal/service/provision"
	"printshop/internal/storage/cache"
	"printshop/internal/storage/mysql"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

const frontendDir = "./frontend-dist"

func routes(
	cfg config.Config,
	log *slog.Logger,
	db *mysql.Storage,
	store cache.Backend,
	engine *pricing.Engine,
	genService *generate_excel.GenerateExcelService,
	provisionService *provisionservice.Service,
) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Quote-ID"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Конфигуратор: изделие, шаблон, материалы
	router.Get("/api/products/{id}", getproduct.GetProduct(log, store))
	router.Get("/api/materials", getmaterials.GetMaterials(log, db))

	// Расчёт цены и выгрузка расчёта в Excel
	router.Post("/api/pricing/calculate", calculate.CalculatePrice(log, engine))
	router.Post("/api/pricing/export", export.ExportQuoteExcel(log, genService))

	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth("Printshop Admin", cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Get("/settings", getsettings.GetPricingSettings(log, db))
	adminRouter.Put("/markup", update.UpdateMarkup(log, store))
	adminRouter.Post("/products/{id}/provision", provision.ProvisionOperations(log, provisionService))

	router.Mount("/api/admin", adminRouter)

	// Статика фронтенда, если собрана
	if _, err := os.Stat(frontendDir); err != nil {
		log.Warn("Папка фронтенда не найдена, отдаём только API", "path", frontendDir)
		return router
	}

	fileServer := http.FileServer(http.Dir(frontendDir))

	router.Handle("/assets/*", fileServer)
	router.Handle("/js/*", fileServer)
	router.Handle("/css/*", fileServer)
	router.Handle("/img/*", fileServer)

	// SPA fallback: любой другой путь → index.html
	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(frontendDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, filepath.Join(frontendDir, "index.html"))
	})

	return router
}
