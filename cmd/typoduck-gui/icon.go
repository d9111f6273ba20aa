package main

import (
	"sync"

	"fyne.io/fyne/v2"

	"github.com/oukeidos/typoduck/internal/logger"
	"github.com/oukeidos/typoduck/internal/sprite"
)

// iconScale turns the 16px crouching duck into a 64px icon.
const iconScale = 4

var iconPNG = sync.OnceValue(func() []byte {
	data, err := sprite.PNG(sprite.Frames()[sprite.IconFrame], iconScale)
	if err != nil {
		logger.Error("Failed to render app icon", "error", err)
		return nil
	}
	return data
})

func appIcon() fyne.Resource {
	return fyne.NewStaticResource("icon.png", iconPNG())
}
