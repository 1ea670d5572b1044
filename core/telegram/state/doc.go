// Package state keeps per-conversation sessions in memory.
// Sessions are keyed by chat and user so that the same person talking in two
// chats gets two independent conversations.
package state
