// Package feed は閲覧者ごとのフィード系列と現在位置の管理を提供する。
// フィードはロードのたびに再構築され、カーソルは永続化されない。
package feed

import (
	"context"

	"github.com/hitoshi/ideaswipe/internal/model"
)

// VoteRecorder は投票の記録先インターフェース。
// 実装はinteractionパッケージが提供する。
type VoteRecorder interface {
	Record(ctx context.Context, userID, ideaID string, voteType model.VoteType) error
}

// Entry はフィード内の1件のアイデアと、閲覧者の投票状態を表す。
type Entry struct {
	Idea  *model.Idea
	Voted bool           // 閲覧者がこのアイデアに投票済みか
	Vote  model.VoteType // 投票済みの場合の種別
}

// Session は閲覧者1人分のフィード状態機械。
// 対象はステータスが承認済みかつ自分以外の投稿で、格納順に並ぶ。
// 並行アクセスを想定しない（リクエスト内でのみ使用する）。
type Session struct {
	viewerID string
	entries  []*Entry
	cursor   int // 対象が空の場合は-1
	recorder VoteRecorder
}

// newSession はエントリ一覧からセッションを組み立てる。
// 初期カーソルは未投票の最初のアイデア。全件投票済みなら最後のインデックス、
// 対象が空なら現在位置なし。
func newSession(viewerID string, entries []*Entry, recorder VoteRecorder) *Session {
	cursor := -1
	if len(entries) > 0 {
		cursor = len(entries) - 1
		for i, e := range entries {
			if !e.Voted {
				cursor = i
				break
			}
		}
	}
	return &Session{
		viewerID: viewerID,
		entries:  entries,
		cursor:   cursor,
		recorder: recorder,
	}
}

// Entries はフィードの全エントリを格納順で返す。
func (s *Session) Entries() []*Entry {
	return s.entries
}

// Cursor は現在位置のインデックスを返す。対象が空の場合は-1。
func (s *Session) Cursor() int {
	return s.cursor
}

// Current は現在のエントリを返す。対象が空の場合はnil。
func (s *Session) Current() *Entry {
	if s.cursor < 0 {
		return nil
	}
	return s.entries[s.cursor]
}

// Advance はカーソルを1つ進める。末尾では何もしない。
// 投票状態には影響しない。
func (s *Session) Advance() {
	if s.cursor >= 0 && s.cursor < len(s.entries)-1 {
		s.cursor++
	}
}

// Retreat はカーソルを1つ戻す。先頭では何もしない。
// 投票状態には影響しない。
func (s *Session) Retreat() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// Vote は現在のアイデアに投票する。
// 現在位置がない場合と投票済みの場合は黙って何もしない。
// 記録後はフィードを再読込せずに済むよう、手元のカウンタも加算する。
func (s *Session) Vote(ctx context.Context, voteType model.VoteType) error {
	current := s.Current()
	if current == nil || current.Voted {
		return nil
	}
	if !voteType.IsValid() {
		return model.NewValidationError("不正な投票種別です")
	}

	if err := s.recorder.Record(ctx, s.viewerID, current.Idea.ID, voteType); err != nil {
		return err
	}

	switch voteType {
	case model.VoteTypeLike:
		current.Idea.Likes++
	case model.VoteTypeDislike:
		current.Idea.Dislikes++
	}
	current.Voted = true
	current.Vote = voteType

	return nil
}
