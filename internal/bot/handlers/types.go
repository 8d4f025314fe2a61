package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// Handler processes bot commands.
type Handler func(c telebot.Context) error
