package game

import (
	"log/slog"

	"github.com/pixil98/go-mudmaze/internal/display"
)

// Strings holds the flavor text used by mob encounters. Each entry is a
// template expanded with sprig functions against encounterData.
type Strings struct {
	CultistLoseMap          string `json:"cultist_lose_map,omitempty" yaml:"cultist_lose_map,omitempty"`
	CultistKeepMap          string `json:"cultist_keep_map,omitempty" yaml:"cultist_keep_map,omitempty"`
	CultistBystander        string `json:"cultist_bystander,omitempty" yaml:"cultist_bystander,omitempty"`
	CultistCaptive          string `json:"cultist_captive,omitempty" yaml:"cultist_captive,omitempty"`
	CultistCaptiveBystander string `json:"cultist_captive_bystander,omitempty" yaml:"cultist_captive_bystander,omitempty"`
	SpiderCaptive           string `json:"spider_captive,omitempty" yaml:"spider_captive,omitempty"`
	SpiderBystander         string `json:"spider_bystander,omitempty" yaml:"spider_bystander,omitempty"`
	BansheeAction           string `json:"banshee_action,omitempty" yaml:"banshee_action,omitempty"`
	BansheeStart            string `json:"banshee_start,omitempty" yaml:"banshee_start,omitempty"`
	BansheeStop             string `json:"banshee_stop,omitempty" yaml:"banshee_stop,omitempty"`
	BansheeFail             string `json:"banshee_fail,omitempty" yaml:"banshee_fail,omitempty"`
}

var defaultStrings = Strings{
	CultistLoseMap:          "A hooded cultist steps out of the shadows and blows a fine grey powder into your face. When your eyes stop watering you realize you can no longer remember the way you came. The cultist is gone.",
	CultistKeepMap:          "A hooded cultist steps out of the shadows and blows a fine grey powder at you. You hold your breath and stumble back. When the dust settles the cultist is gone.",
	CultistBystander:        "A hooded cultist blows a cloud of grey powder into {{ .Username }}'s face and vanishes.",
	CultistCaptive:          "A hooded cultist seizes you by the wrist. Several more emerge from the dark, and you are dragged away blindfolded.",
	CultistCaptiveBystander: "Hooded cultists seize {{ .Username }} and drag them into the dark.",
	SpiderCaptive:           "Something drops onto you from the ceiling. Sticky threads bind your arms as a giant spider hauls you off into the dark.",
	SpiderBystander:         "A giant spider drops from the ceiling, wraps {{ .Username }} in silk and hauls them away.",
	BansheeAction:           "A pale figure rises out of the floor and lets out a piercing wail.",
	BansheeStart:            "The wail rattles your skull. You no longer trust your sense of direction.",
	BansheeStop:             "Your head clears and your sense of direction returns.",
	BansheeFail:             "You clap your hands over your ears and the wail passes.",
}

// withDefaults fills unset entries from the built-in text.
func (s Strings) withDefaults() Strings {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.CultistLoseMap, defaultStrings.CultistLoseMap)
	fill(&s.CultistKeepMap, defaultStrings.CultistKeepMap)
	fill(&s.CultistBystander, defaultStrings.CultistBystander)
	fill(&s.CultistCaptive, defaultStrings.CultistCaptive)
	fill(&s.CultistCaptiveBystander, defaultStrings.CultistCaptiveBystander)
	fill(&s.SpiderCaptive, defaultStrings.SpiderCaptive)
	fill(&s.SpiderBystander, defaultStrings.SpiderBystander)
	fill(&s.BansheeAction, defaultStrings.BansheeAction)
	fill(&s.BansheeStart, defaultStrings.BansheeStart)
	fill(&s.BansheeStop, defaultStrings.BansheeStop)
	fill(&s.BansheeFail, defaultStrings.BansheeFail)
	return s
}

type encounterData struct {
	Username string
	Maze     string
}

// text expands a flavor template for p. A broken template falls back to the raw text.
func (w *World) text(tmpl string, p *Player) string {
	data := encounterData{Maze: w.maze.Name()}
	if p != nil {
		data.Username = p.Username
	}
	out, err := display.ExpandTemplate(tmpl, data)
	if err != nil {
		slog.Error("expanding flavor text", "error", err)
		return tmpl
	}
	return out
}
