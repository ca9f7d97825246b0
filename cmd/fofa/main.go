package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/sonjayce/TianyanchaAutosearch/config"
	"github.com/sonjayce/TianyanchaAutosearch/fofa"
	"github.com/sonjayce/TianyanchaAutosearch/models"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	in := flag.String("in", cfg.Fofa.Input, "result CSV to read")
	out := flag.String("out", cfg.Fofa.Output, "file to write the expression to")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if _, err := os.Stat(*in); err != nil {
		fmt.Fprintf(os.Stderr, "错误：未找到文件 %s\n", *in)
		os.Exit(1)
	}

	fmt.Println("处理进度：")
	bar := fofa.NewBar(os.Stdout, int(os.Stdout.Fd()), "")
	stats, err := fofa.Convert(*in, *out, bar.Update)
	bar.Done()

	switch {
	case errors.Is(err, models.ErrHeaderNotFound):
		fmt.Fprintf(os.Stderr, "错误：未找到域名列（请确认列名为 %q 或 %q）\n", fofa.HeaderCandidates[0], fofa.HeaderCandidates[1])
		os.Exit(1)
	case errors.Is(err, models.ErrNoDomains):
		fmt.Fprintln(os.Stderr, "警告：未找到有效域名")
		os.Exit(1)
	case err != nil:
		slog.Error("fofa conversion failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("完成！共处理 %d 行，生成 %d 个OR条件表达式\n", stats.Rows, stats.Domains)
	fmt.Printf("结果已保存到 %s\n", *out)
}
