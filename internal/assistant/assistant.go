// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package assistant handles one conversational turn of the website chat:
// the utterance is classified, then either applied to the website as an
// edit or answered as a design question. A turn never fails; backend
// problems become apologetic replies and the description is left as it was.
package assistant

import (
	"context"
	"log/slog"

	"sitesmith/internal/ai"
	"sitesmith/internal/builder"
	"sitesmith/internal/intent"
	"sitesmith/internal/site"
)

// Canned assistant replies.
const (
	Greeting     = "Hi! I'm your web AI assistant. Tell me what you'd like to change on your website, or ask me for design advice!"
	EditSuccess  = "I've updated your website! What do you think?"
	BuildSuccess = "I've built a first version of your website! Tell me what to change."
)

// Responder is the generative client. *builder.Client satisfies it.
type Responder interface {
	Generate(ctx context.Context, prompt string) (*site.Website, error)
	Edit(ctx context.Context, current *site.Website, instruction string) (*site.Website, error)
	Chat(ctx context.Context, history []ai.Message, message string) (string, error)
}

// Turn is the outcome of one utterance.
type Turn struct {
	Intent  intent.Intent
	Reply   string
	Website *site.Website // description after the turn; the input one when unchanged
	Changed bool          // Website differs from the input description
	Err     error         // underlying failure, for logging only
}

// Assistant routes utterances between edits and chat.
type Assistant struct {
	classifier *intent.Classifier
	responder  Responder
}

// New creates an assistant.
func New(classifier *intent.Classifier, responder Responder) *Assistant {
	return &Assistant{classifier: classifier, responder: responder}
}

// Classify exposes the routing decision so callers can take the edit lock
// before calling Handle.
func (a *Assistant) Classify(utterance string) intent.Intent {
	return a.classifier.Classify(utterance)
}

// Handle processes utterance against current with the given prior turns.
// Edit intents without a current website build a new one from the
// utterance.
func (a *Assistant) Handle(ctx context.Context, current *site.Website, history []ai.Message, utterance string) Turn {
	in := a.classifier.Classify(utterance)
	if in == intent.Chat {
		return a.chat(ctx, current, history, utterance)
	}

	if current == nil {
		w, err := a.responder.Generate(ctx, utterance)
		if err != nil {
			slog.Warn("assistant build failed", "error", err)
			return Turn{Intent: in, Reply: builder.UserMessage(err), Err: err}
		}
		return Turn{Intent: in, Reply: BuildSuccess, Website: w, Changed: true}
	}

	w, err := a.responder.Edit(ctx, current, utterance)
	if err != nil {
		slog.Warn("assistant edit failed", "error", err)
		return Turn{Intent: in, Reply: builder.UserMessage(err), Website: current, Err: err}
	}
	return Turn{Intent: in, Reply: EditSuccess, Website: w, Changed: true}
}

func (a *Assistant) chat(ctx context.Context, current *site.Website, history []ai.Message, utterance string) Turn {
	reply, err := a.responder.Chat(ctx, history, utterance)
	if err != nil {
		return Turn{Intent: intent.Chat, Reply: builder.ChatApology, Website: current, Err: err}
	}
	return Turn{Intent: intent.Chat, Reply: reply, Website: current}
}

// Record appends the user utterance and the assistant reply to history and
// returns the new slice.
func Record(history []ai.Message, utterance string, t Turn) []ai.Message {
	out := make([]ai.Message, 0, len(history)+2)
	out = append(out, history...)
	return append(out,
		ai.Message{Role: ai.RoleUser, Content: utterance},
		ai.Message{Role: ai.RoleAssistant, Content: t.Reply},
	)
}
