package chat

import "github.com/abhisek/parlo/internal/tutor"

// openedMsg carries the tutor's opening message.
type openedMsg struct {
	Reply tutor.Reply
	Err   error
}

// replyMsg carries the tutor's answer to one learner message.
type replyMsg struct {
	Reply tutor.Reply
	Err   error
}

// endedMsg carries the end-of-session summary.
type endedMsg struct {
	Summary string
	Err     error
}
