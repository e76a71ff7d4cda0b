// Package chats groups the conversation model shared by providers and
// agents: role (who speaks), content (what a message is made of), message
// (a single turn), and chat (the mutable conversation container).
package chats
