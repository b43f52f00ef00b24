package main

import (
	"context"
	"log"
	"time"

	"dermadect/internal/datastore"
	"dermadect/internal/llm"
	"dermadect/internal/services"

	"github.com/uptrace/bun"
)

const tipPrompt = `Generate a random health tip or advice. Follow this format:

**Health Tip**
- Topic: [specific health topic]
- Tip: [practical, actionable advice]
- Why it matters: [brief explanation]
- Implementation: [how to apply it]

Keep it concise, practical, and evidence-based.`

type healthTipJob struct {
	postgresDB *bun.DB
	bot        *services.Bot
	provider   llm.Provider
}

// run sends one generated tip to every user who has chatted with the bot.
func (job *healthTipJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	tip, err := job.provider.Complete(ctx, tipPrompt, []llm.Message{
		{Role: llm.RoleUser, Content: "Generate a health tip about general health"},
	}, 0.7)
	if err != nil {
		log.Printf("unable to generate daily tip: %v", err)
		return
	}

	users, err := datastore.ListUsersWithChat(ctx, job.postgresDB)
	if err != nil {
		log.Printf("unable to list users: %v", err)
		return
	}

	sent := 0
	for _, user := range users {
		if err := job.bot.SendMsg(user, tip); err != nil {
			log.Printf("unable to send tip to user %s: %v", user.ID, err)
			continue
		}
		sent++
	}

	log.Printf("daily tip delivered to %d/%d users", sent, len(users))
}
