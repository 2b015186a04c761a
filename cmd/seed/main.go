package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/tmuh-dev/duty-roster/backend/internal/config"
	"github.com/tmuh-dev/duty-roster/backend/internal/domain"
	"github.com/tmuh-dev/duty-roster/backend/internal/repository"
	"github.com/tmuh-dev/duty-roster/backend/internal/seed"
	"github.com/tmuh-dev/duty-roster/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var year int
	var monthKey string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机医师, 2: 插入某月的随机预休日提交, 3: 插入真实医师数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.IntVar(&year, "year", time.Now().Year(), "插入真实数据时默认提交覆盖的年份")
	flag.StringVar(&monthKey, "month-key", "", "随机插入预休日提交的月份，形如 2025-06")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的医师数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomDoctor(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机医师", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入医师", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入医师成功", slog.Int("count", n-cnt))
		}
	case 2:
		y, m, err := domain.ParseMonthKey(monthKey)
		if err != nil {
			slog.Error("请输入合法的月份", slog.String("error", err.Error()))
			return
		}

		cal, err := domain.NewCalendar(y, m, nil)
		if err != nil {
			slog.Error("无法构建日历", slog.String("error", err.Error()))
			return
		}

		// 获取所有的医师信息
		doctors, err := repo.GetActiveDoctors()
		if err != nil {
			slog.Error("无法获取在职医师", slog.String("error", err.Error()))
			return
		}

		// 为每一位医师都生成一个提交记录并插入
		cnt := 0
		for _, doctor := range doctors {
			submission := utils.GenerateRandomSubmission(cal, doctor)
			if err := repo.UpsertDutySubmission(submission); err != nil {
				slog.Error("无法插入提交记录", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入提交记录成功", slog.Int("count", cnt))
	case 3:
		seed.SeedTemplateDoctors(repo, cfg.Seed.User.Password, cfg.Email.UserDomain, year)
	default:
		slog.Error("指定的操作非法")
	}
}
