package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/tmuh-dev/duty-roster/backend/internal/config"
	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
	"github.com/tmuh-dev/duty-roster/backend/internal/holiday"
	"github.com/tmuh-dev/duty-roster/backend/internal/repository"
)

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	repository    *repository.Repository
	translator    ut.Translator
	mailChannel   *amqp.Channel
	redisClient   *redis.Client
	holidaySource holiday.Source

	// 限制同时进行的排班求解数量
	rosterSem chan struct{}

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client, holidays holiday.Source) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:      validate,
		config:        cfg,
		repository:    repo,
		translator:    trans,
		mailChannel:   mailCh,
		redisClient:   rdb,
		holidaySource: holidays,

		rosterSem: make(chan struct{}, cfg.Scheduler.MaxConcurrentRuns),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleChief})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo) // 所有医师都可以查看其他人的基本信息
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleChief})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleChief})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleChief})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/months/{monthKey}", func(r chi.Router) {
			r.Use(h.month)
			r.Get("/", h.GetMonth)
			r.Route("/my-days-off", func(r chi.Router) {
				r.Use(h.myInfo)
				r.Use(h.preventInactiveDoctor)
				r.Put("/", h.SubmitMyDaysOff)
				r.Get("/", h.GetMyDaysOff)
			})
			// 只有总医师能够查看全部提交情况和操作排班结果
			r.With(h.RequiredRole([]domain.Role{domain.RoleChief})).Get("/submissions", h.GetMonthSubmissions)
			r.Route("/roster", func(r chi.Router) {
				r.Use(h.RequiredRole([]domain.Role{domain.RoleChief}))
				r.Get("/", h.GetRosterResult)
				r.Post("/generate", h.GenerateRoster)
			})
		})
	})
}
