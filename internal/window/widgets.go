package window

import (
	"image"
	"image/color"
	"math"
	"time"

	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"taiwa/internal/conversation"
	"taiwa/internal/i18n"
	"taiwa/internal/session"
)

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// drawConversation рисует окно целиком для одного кадра.
func drawConversation(gtx layout.Context, w *Window, state session.State, ctl controls) {
	cfg := w.config
	th := w.theme()

	drawBackground(gtx, cfg.BGColor)

	layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			// Строка статуса: индикатор записи, спиннер или заголовок
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return drawStatusRow(gtx, th, w, state)
			}),

			layout.Rigid(layout.Spacer{Height: unit.Dp(10)}.Layout),

			// Запись и отправка
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				recordColor := cfg.AccentColor
				if state.Recording {
					recordColor = cfg.RecordColor
				}
				return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return drawActionButton(gtx, th, &w.recordBtn, recordColor, i18n.T(ctl.RecordKey), ctl.Record)
					}),
					layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return drawActionButton(gtx, th, &w.sendBtn, cfg.LevelColor, i18n.T("btn_send"), ctl.Send)
					}),
				)
			}),

			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),

			// Расшифровка
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return drawCaption(gtx, th, cfg, i18n.T("label_transcript"))
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min.Y = gtx.Dp(unit.Dp(72))
				gtx.Constraints.Max.Y = gtx.Constraints.Min.Y
				return drawEditorPanel(gtx, th, cfg, &w.editor, ctl.Edit)
			}),

			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),

			// Последний ответ с копированием
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return drawCaption(gtx, th, cfg, i18n.T("label_reply"))
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return drawSmallButton(gtx, th, &w.copyBtn, cfg, i18n.T("btn_copy"), ctl.Copy)
					}),
				)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return drawTextPanel(gtx, th, cfg, state.Reply)
			}),

			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),

			// История с очисткой
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return drawCaption(gtx, th, cfg, i18n.T("label_history"))
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return drawSmallButton(gtx, th, &w.clearBtn, cfg, i18n.T("btn_clear"), ctl.Clear)
					}),
				)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return drawHistory(gtx, th, cfg, &w.history, state.History)
			}),
		)
	})
}

func drawStatusRow(gtx layout.Context, th *material.Theme, w *Window, state session.State) layout.Dimensions {
	cfg := w.config
	switch {
	case state.Recording:
		elapsed := time.Since(state.RecordingSince)
		var level float32
		if w.level != nil {
			level = w.level.Level()
		}
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return drawRecordingDot(gtx, elapsed, cfg.RecordColor)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Label(th, unit.Sp(14), i18n.T("tray_recording"))
				lbl.Font.Weight = font.Medium
				return lbl.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min.Y = gtx.Dp(unit.Dp(10))
				gtx.Constraints.Max.Y = gtx.Constraints.Min.Y
				return drawLevelMeter(gtx, level, cfg)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return drawTimerBadge(gtx, th, elapsed, cfg)
			}),
		)
	case state.Loading:
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return drawSpinner(gtx, time.Now(), cfg.AccentColor)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Label(th, unit.Sp(14), i18n.T("status_loading"))
				lbl.Font.Weight = font.Medium
				return lbl.Layout(gtx)
			}),
		)
	default:
		lbl := material.Label(th, unit.Sp(18), i18n.T("window_title"))
		lbl.Font.Weight = font.Medium
		return lbl.Layout(gtx)
	}
}

// drawBackground рисует прямоугольный фон.
func drawBackground(gtx layout.Context, col color.NRGBA) {
	rect := clip.Rect{Max: gtx.Constraints.Max}
	paint.FillShape(gtx.Ops, col, rect.Op())
}

// drawPanel заливает скруглённую панель заданного размера.
func drawPanel(gtx layout.Context, size image.Point, col color.NRGBA) {
	rr := gtx.Dp(unit.Dp(8))
	rect := clip.RRect{
		Rect: image.Rectangle{Max: size},
		NE:   rr, NW: rr, SE: rr, SW: rr,
	}
	paint.FillShape(gtx.Ops, col, rect.Op(gtx.Ops))
}

// drawRecordingDot рисует пульсирующий индикатор записи.
func drawRecordingDot(gtx layout.Context, elapsed time.Duration, col color.NRGBA) layout.Dimensions {
	size := gtx.Dp(unit.Dp(10))

	pulse := float32(math.Sin(float64(elapsed.Milliseconds())/200.0)*0.3 + 0.7)
	pulseCol := col
	pulseCol.A = uint8(float32(col.A) * pulse)

	circle := clip.Ellipse{Max: image.Pt(size, size)}
	paint.FillShape(gtx.Ops, pulseCol, circle.Op(gtx.Ops))

	return layout.Dimensions{Size: image.Pt(size, size)}
}

// drawTimerBadge рисует прошедшее время в плашке.
func drawTimerBadge(gtx layout.Context, th *material.Theme, elapsed time.Duration, cfg Config) layout.Dimensions {
	macro := op.Record(gtx.Ops)
	dims := layout.Inset{
		Top: unit.Dp(4), Bottom: unit.Dp(4),
		Left: unit.Dp(10), Right: unit.Dp(10),
	}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		lbl := material.Label(th, unit.Sp(13), formatElapsed(elapsed))
		lbl.Font.Weight = font.Bold
		return lbl.Layout(gtx)
	})
	call := macro.Stop()

	drawPanel(gtx, dims.Size, cfg.PanelColor)
	call.Add(gtx.Ops)
	return dims
}

// drawLevelMeter рисует горизонтальную полосу уровня входа.
func drawLevelMeter(gtx layout.Context, level float32, cfg Config) layout.Dimensions {
	width := gtx.Constraints.Max.X
	height := gtx.Constraints.Max.Y

	drawPanel(gtx, image.Pt(width, height), cfg.PanelColor)

	if level > 1 {
		level = 1
	}
	if barWidth := int(level * float32(width)); barWidth > 0 {
		rr := gtx.Dp(unit.Dp(4))
		bar := clip.RRect{
			Rect: image.Rectangle{Max: image.Pt(barWidth, height)},
			NE:   rr, NW: rr, SE: rr, SW: rr,
		}
		paint.FillShape(gtx.Ops, levelColor(level, cfg), bar.Op(gtx.Ops))
	}

	return layout.Dimensions{Size: image.Pt(width, height)}
}

// drawSpinner рисует вращающееся кольцо точек.
func drawSpinner(gtx layout.Context, now time.Time, col color.NRGBA) layout.Dimensions {
	size := gtx.Dp(unit.Dp(22))
	thickness := gtx.Dp(unit.Dp(3))

	rotation := float64(now.UnixMilli()%800) / 800.0 * 2 * math.Pi
	center := image.Pt(size/2, size/2)
	radius := size/2 - thickness

	numDots := 12
	for i := 0; i < numDots; i++ {
		angle := rotation + float64(i)*2*math.Pi/float64(numDots)
		x := center.X + int(float64(radius)*math.Cos(angle))
		y := center.Y + int(float64(radius)*math.Sin(angle))

		alpha := 255 - i*20
		if alpha < 40 {
			alpha = 40
		}
		dotColor := col
		dotColor.A = uint8(alpha)

		dotRadius := thickness / 2
		dot := clip.Ellipse{
			Min: image.Pt(x-dotRadius, y-dotRadius),
			Max: image.Pt(x+dotRadius, y+dotRadius),
		}
		paint.FillShape(gtx.Ops, dotColor, dot.Op(gtx.Ops))
	}

	return layout.Dimensions{Size: image.Pt(size, size)}
}

func drawCaption(gtx layout.Context, th *material.Theme, cfg Config, text string) layout.Dimensions {
	lbl := material.Label(th, unit.Sp(12), text)
	lbl.Color = cfg.TextDimColor
	return lbl.Layout(gtx)
}

// drawEditorPanel рисует редактор расшифровки. Редактор только для чтения затемнён.
func drawEditorPanel(gtx layout.Context, th *material.Theme, cfg Config, editor *widget.Editor, enabled bool) layout.Dimensions {
	drawPanel(gtx, gtx.Constraints.Max, cfg.PanelColor)

	return layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		ed := material.Editor(th, editor, i18n.T("hint_transcript"))
		ed.TextSize = unit.Sp(15)
		ed.Color = cfg.TextColor
		ed.HintColor = cfg.TextDimColor
		if !enabled {
			ed.Color = cfg.TextDimColor
		}
		return ed.Layout(gtx)
	})
}

// drawTextPanel рисует текст в панели по размеру содержимого.
func drawTextPanel(gtx layout.Context, th *material.Theme, cfg Config, text string) layout.Dimensions {
	macro := op.Record(gtx.Ops)
	dims := layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min.X = gtx.Constraints.Max.X
		lbl := material.Body1(th, text)
		lbl.Color = cfg.TextColor
		lbl.MaxLines = 6
		return lbl.Layout(gtx)
	})
	call := macro.Stop()

	drawPanel(gtx, dims.Size, cfg.PanelColor)
	call.Add(gtx.Ops)
	return dims
}

// drawHistory рисует диалог прокручиваемым списком сообщений.
func drawHistory(gtx layout.Context, th *material.Theme, cfg Config, list *widget.List, history []conversation.Message) layout.Dimensions {
	if len(history) == 0 {
		return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			lbl := material.Label(th, unit.Sp(13), i18n.T("status_empty"))
			lbl.Color = cfg.TextDimColor
			return lbl.Layout(gtx)
		})
	}

	return material.List(th, list).Layout(gtx, len(history), func(gtx layout.Context, i int) layout.Dimensions {
		return layout.Inset{Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return drawMessage(gtx, th, cfg, history[i])
		})
	})
}

func drawMessage(gtx layout.Context, th *material.Theme, cfg Config, m conversation.Message) layout.Dimensions {
	bg := cfg.AIColor
	who := i18n.T("label_ai")
	if m.Role == conversation.RoleUser {
		bg = cfg.UserColor
		who = i18n.T("label_you")
	}

	macro := op.Record(gtx.Ops)
	dims := layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min.X = gtx.Constraints.Max.X
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Label(th, unit.Sp(11), who)
				lbl.Color = cfg.TextDimColor
				lbl.Font.Weight = font.Medium
				return lbl.Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Body2(th, m.Content)
				lbl.Color = cfg.TextColor
				return lbl.Layout(gtx)
			}),
		)
	})
	call := macro.Stop()

	drawPanel(gtx, dims.Size, bg)
	call.Add(gtx.Ops)
	return dims
}

// drawActionButton рисует кнопку во всю ширину. Отключённая кнопка
// затемнена и не получает ввод.
func drawActionButton(gtx layout.Context, th *material.Theme, btn *widget.Clickable, bgColor color.NRGBA, text string, enabled bool) layout.Dimensions {
	if !enabled {
		gtx = gtx.Disabled()
	}
	return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		currentBg := bgColor
		switch {
		case !enabled:
			currentBg = dim(bgColor, 0.45)
		case btn.Hovered():
			currentBg = dim(bgColor, 0.85)
		}

		macro := op.Record(gtx.Ops)
		dims := layout.Inset{
			Top: unit.Dp(10), Bottom: unit.Dp(10),
			Left: unit.Dp(12), Right: unit.Dp(12),
		}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				lbl := material.Label(th, unit.Sp(14), text)
				lbl.Color = white
				lbl.Font.Weight = font.Medium
				return lbl.Layout(gtx)
			})
		})
		call := macro.Stop()

		size := image.Pt(gtx.Constraints.Max.X, dims.Size.Y)
		drawPanel(gtx, size, currentBg)
		call.Add(gtx.Ops)
		return layout.Dimensions{Size: size}
	})
}

// drawSmallButton рисует компактную кнопку для заголовков панелей.
func drawSmallButton(gtx layout.Context, th *material.Theme, btn *widget.Clickable, cfg Config, text string, enabled bool) layout.Dimensions {
	if !enabled {
		gtx = gtx.Disabled()
	}
	return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		col := cfg.AccentColor
		switch {
		case !enabled:
			col = cfg.TextDimColor
		case btn.Hovered():
			col = white
		}
		return layout.Inset{
			Top: unit.Dp(2), Bottom: unit.Dp(2),
			Left: unit.Dp(6), Right: unit.Dp(6),
		}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			lbl := material.Label(th, unit.Sp(12), text)
			lbl.Color = col
			return lbl.Layout(gtx)
		})
	})
}

func dim(c color.NRGBA, f float32) color.NRGBA {
	return color.NRGBA{
		R: uint8(float32(c.R) * f),
		G: uint8(float32(c.G) * f),
		B: uint8(float32(c.B) * f),
		A: c.A,
	}
}
