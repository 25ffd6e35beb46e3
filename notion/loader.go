package notion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"goc-doc-qa/models"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"
)

// Prefix 문서 입력에서 Notion 페이지를 가리키는 접두사 (notion:<page-id>)
const Prefix = "notion:"

const (
	maxDepth       = 20
	pageSize       = 100
	rateLimitDelay = 350 * time.Millisecond
)

type blockService interface {
	GetChildren(ctx context.Context, id notionapi.BlockID, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error)
}

type pageService interface {
	Get(ctx context.Context, id notionapi.PageID) (*notionapi.Page, error)
}

// Loader Notion 페이지 하나를 평문 Document로 가져오는 구조체
type Loader struct {
	blocks blockService
	pages  pageService
	delay  time.Duration
	log    *zap.Logger
}

// NewLoader 새로운 Notion 로더를 생성합니다
func NewLoader(apiKey string, log *zap.Logger) *Loader {
	client := notionapi.NewClient(notionapi.Token(apiKey))
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		blocks: client.Block,
		pages:  client.Page,
		delay:  rateLimitDelay,
		log:    log,
	}
}

// ParseRef "notion:<page-id>" 입력에서 페이지 ID를 꺼냅니다
func ParseRef(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(strings.ToLower(input), Prefix) {
		return "", false
	}
	id := strings.TrimSpace(input[len(Prefix):])
	return id, id != ""
}

// FetchPage 페이지의 모든 블록을 재귀적으로 가져와 하나의 Document로 만듭니다
// 청킹은 하지 않습니다
func (l *Loader) FetchPage(ctx context.Context, pageID string) (*models.Document, error) {
	page, err := l.pages.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return nil, classify("Notion 페이지 조회 실패", err)
	}

	var parts []string
	if err := l.collect(ctx, notionapi.BlockID(pageID), &parts, 0); err != nil {
		return nil, classify("Notion 블록 조회 실패", err)
	}

	content := strings.Join(parts, "\n\n")
	title := PageTitle(page)

	l.log.Info("notion page loaded",
		zap.String("page_id", pageID),
		zap.String("title", title),
		zap.Int("blocks", len(parts)),
		zap.Int("bytes", len(content)),
	)

	return &models.Document{
		Name:    title,
		Source:  "notion",
		Content: content,
		Meta: map[string]string{
			"page_id":   pageID,
			"url":       PageURL(page),
			"last_edit": page.LastEditedTime.Format(time.RFC3339),
		},
	}, nil
}

// collect 블록을 페이지 단위로 읽으며 텍스트를 모읍니다
// 하위 페이지와 데이터베이스는 따라가지 않습니다
func (l *Loader) collect(ctx context.Context, id notionapi.BlockID, parts *[]string, depth int) error {
	if depth > maxDepth {
		return nil
	}

	var cursor notionapi.Cursor
	for {
		resp, err := l.blocks.GetChildren(ctx, id, &notionapi.Pagination{
			StartCursor: cursor,
			PageSize:    pageSize,
		})
		if err != nil {
			return err
		}

		for _, block := range resp.Results {
			if text := BlockText(block, depth); text != "" {
				*parts = append(*parts, text)
			}

			switch block.(type) {
			case *notionapi.ChildPageBlock, *notionapi.ChildDatabaseBlock:
				continue
			}

			if block.GetHasChildren() {
				if err := l.collect(ctx, block.GetID(), parts, depth+1); err != nil {
					return err
				}
			}
		}

		if !resp.HasMore {
			return nil
		}
		cursor = notionapi.Cursor(resp.NextCursor)

		if l.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.delay):
			}
		}
	}
}

// BlockText 블록 하나를 마크다운 비슷한 텍스트로 바꿉니다
func BlockText(block notionapi.Block, depth int) string {
	indent := strings.Repeat("  ", depth)

	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		return prefixed(indent, RichText(b.Paragraph.RichText))
	case *notionapi.Heading1Block:
		return "# " + RichText(b.Heading1.RichText)
	case *notionapi.Heading2Block:
		return "## " + RichText(b.Heading2.RichText)
	case *notionapi.Heading3Block:
		return "### " + RichText(b.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		return indent + "- " + RichText(b.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		return indent + "1. " + RichText(b.NumberedListItem.RichText)
	case *notionapi.ToDoBlock:
		mark := " "
		if b.ToDo.Checked {
			mark = "x"
		}
		return fmt.Sprintf("%s- [%s] %s", indent, mark, RichText(b.ToDo.RichText))
	case *notionapi.CodeBlock:
		return "```" + b.Code.Language + "\n" + RichText(b.Code.RichText) + "\n```"
	case *notionapi.QuoteBlock:
		return "> " + RichText(b.Quote.RichText)
	case *notionapi.CalloutBlock:
		return prefixed(indent, RichText(b.Callout.RichText))
	case *notionapi.ToggleBlock:
		return prefixed(indent, RichText(b.Toggle.RichText))
	case *notionapi.ChildPageBlock:
		return fmt.Sprintf("[page: %s]", b.ChildPage.Title)
	case *notionapi.ChildDatabaseBlock:
		return fmt.Sprintf("[database: %s]", b.ChildDatabase.Title)
	case *notionapi.TableRowBlock:
		var cells []string
		for _, cell := range b.TableRow.Cells {
			cells = append(cells, RichText(cell))
		}
		if len(cells) == 0 {
			return ""
		}
		return "| " + strings.Join(cells, " | ") + " |"
	case *notionapi.BookmarkBlock:
		if caption := RichText(b.Bookmark.Caption); caption != "" {
			return fmt.Sprintf("[%s](%s)", caption, b.Bookmark.URL)
		}
		return b.Bookmark.URL
	case *notionapi.ImageBlock:
		if caption := RichText(b.Image.Caption); caption != "" {
			return fmt.Sprintf("[image: %s]", caption)
		}
		return ""
	default:
		// divider, table 등은 본문이 없음
		return ""
	}
}

// RichText RichText 배열의 평문을 이어붙입니다
func RichText(rt []notionapi.RichText) string {
	var b strings.Builder
	for _, r := range rt {
		b.WriteString(r.PlainText)
	}
	return b.String()
}

// PageTitle 페이지 제목을 꺼냅니다
func PageTitle(page *notionapi.Page) string {
	for _, key := range []string{"title", "Name"} {
		if prop, ok := page.Properties[key]; ok {
			if title, ok := prop.(*notionapi.TitleProperty); ok {
				return RichText(title.Title)
			}
		}
	}
	return "Untitled"
}

// PageURL 페이지 URL을 만듭니다
func PageURL(page *notionapi.Page) string {
	if page.URL != "" {
		return page.URL
	}
	return fmt.Sprintf("https://www.notion.so/%s", strings.ReplaceAll(string(page.ID), "-", ""))
}

// classify Notion API가 돌려준 오류는 remote, 전송 계층 오류는 network 로 분류합니다
func classify(op string, err error) error {
	var (
		apiErr *notionapi.Error
		urlErr *url.Error
		netErr net.Error
	)

	switch {
	case errors.As(err, &apiErr):
		return models.E(models.KindRemote, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &urlErr), errors.As(err, &netErr):
		return models.E(models.KindNetwork, op, err)
	default:
		return models.E(models.KindRemote, op, err)
	}
}

func prefixed(indent, text string) string {
	if text == "" {
		return ""
	}
	return indent + text
}
