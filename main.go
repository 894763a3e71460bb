// @title Math Quiz API
// @version 1.0
// @description 算术测验服务：出题、批改、结果汇总与练习纸下载。

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:5000
// @BasePath /

package main

import (
	"flag"
	"log"
	"math_quiz_backend/internal/app"
	"math_quiz_backend/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	// .env 不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	application.Run()
}
