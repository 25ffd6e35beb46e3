package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"goc-doc-qa/document"
	"goc-doc-qa/llm"
	"goc-doc-qa/logger"
	"goc-doc-qa/models"
	"goc-doc-qa/notion"
	"goc-doc-qa/qa"
	"goc-doc-qa/ui"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 플래그 파싱
	configPath := flag.String("config", defaultConfigPath, "설정 파일 경로")
	docInput := flag.String("doc", "", "문서 경로(.txt, .md) 또는 notion:<page-id>")
	question := flag.String("q", "", "질문. 지정하면 TUI 없이 답변을 표준 출력으로 스트리밍합니다")
	flag.Parse()

	ctx := getCancellableContext()

	// 설정 로드 (API 키가 없으면 여기서 종료)
	config, err := LoadConfig(*configPath, defaultEnvPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, ConfigErrorBanner(err))
		return 1
	}

	zlog, err := logger.New(config.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "🚨 로거 초기화 실패: %v\n", err)
		return 1
	}
	defer zlog.Sync()

	client, err := llm.New(ctx, config.Provider, config.APIKey, config.BaseURL)
	if err != nil {
		zlog.Error("client init failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, ConfigErrorBanner(err))
		return 1
	}
	if closer, ok := client.(io.Closer); ok {
		defer closer.Close()
	}

	zlog.Info("starting",
		zap.String("provider", config.Provider),
		zap.String("model", config.Model),
		zap.Bool("notion", config.NotionAPIKey != ""),
	)

	answerer := qa.New(client, config.Model, zlog)
	opener := newOpener(config, zlog)

	if *question != "" {
		if err := runOnce(ctx, answerer, opener, *docInput, *question, os.Stdout); err != nil {
			zlog.Error("request failed", zap.Error(err), zap.Stringer("kind", models.KindOf(err)))
			fmt.Fprintln(os.Stderr, "\n"+ui.ErrorBanner(err))
			return 1
		}
		return 0
	}

	// TUI 실행
	if err := ui.Run(ctx, answerer, opener, *docInput); err != nil {
		zlog.Error("tui failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "🚨 TUI 실행 실패: %v\n", err)
		return 1
	}
	return 0
}

// newOpener 파일 경로와 notion:<page-id> 입력을 모두 처리하는 Opener를 만듭니다
func newOpener(config *Config, zlog *zap.Logger) ui.Opener {
	var notionLoader *notion.Loader
	if config.NotionAPIKey != "" {
		notionLoader = notion.NewLoader(config.NotionAPIKey, zlog)
	}

	return func(ctx context.Context, input string) (*models.Document, error) {
		if pageID, ok := notion.ParseRef(input); ok {
			if notionLoader == nil {
				return nil, models.E(models.KindValidation, "notion", errors.New("notion_api_key가 설정되지 않았습니다"))
			}
			return notionLoader.FetchPage(ctx, pageID)
		}

		doc, err := document.Load(input)
		if err != nil {
			return nil, err
		}
		zlog.Info("document loaded", zap.String("name", doc.Name), zap.Int("bytes", len(doc.Content)))
		return doc, nil
	}
}

// runOnce 문서 하나와 질문 하나로 답변을 스트리밍하고 끝냅니다
func runOnce(ctx context.Context, asker ui.Asker, opener ui.Opener, input, question string, w io.Writer) error {
	var doc *models.Document
	if strings.TrimSpace(input) != "" {
		var err error
		doc, err = opener(ctx, input)
		if err != nil {
			return err
		}
	}

	stream, err := asker.Ask(ctx, doc, question)
	if err != nil {
		return err
	}

	if _, err := qa.WriteTo(stream, w); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

func getCancellableContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		cancel()
	}()

	return ctx
}
