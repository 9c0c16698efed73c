package services

// EffectCategory groups templates by the kind of subject they animate.
type EffectCategory string

const (
	CategoryGeneral      EffectCategory = "general"
	CategorySingle       EffectCategory = "single"
	CategorySingleAnimal EffectCategory = "single_animal"
	CategoryDouble       EffectCategory = "double"
	CategoryKFSingle     EffectCategory = "kf_single"
)

// Generation kinds: first-frame-to-video vs first-and-last-frame.
const (
	KindImageToVideo    = "i2v"
	KindKeyframeToVideo = "kf2v"
)

// Remote model variants.
const (
	ModelI2VTurbo = "wanx2.1-i2v-turbo"
	ModelI2VPlus  = "wanx2.1-i2v-plus"
	ModelKF2VPlus = "wanx2.1-kf2v-plus"
)

// EffectTemplate is a named remote-service preset describing the motion
// applied to a still image.
type EffectTemplate struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Template        string         `json:"template"`
	Category        EffectCategory `json:"category"`
	SupportedModels []string       `json:"supported_models"`
	InputTip        string         `json:"input_tip"`
	Kind            string         `json:"kind"`
}

// DefaultModelFor picks the model for a template: keyframe templates require
// the dedicated keyframe model, otherwise prefer the turbo variant when the
// template supports it and fall back to the higher-quality plus model.
func DefaultModelFor(t EffectTemplate) string {
	if t.Kind == KindKeyframeToVideo {
		return ModelKF2VPlus
	}
	for _, m := range t.SupportedModels {
		if m == ModelI2VTurbo {
			return ModelI2VTurbo
		}
	}
	return ModelI2VPlus
}

// EffectTemplateByID looks a template up in the catalog.
func EffectTemplateByID(id string) (EffectTemplate, bool) {
	for _, t := range EffectTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return EffectTemplate{}, false
}

var bothI2VModels = []string{ModelI2VPlus, ModelI2VTurbo}
var plusOnly = []string{ModelI2VPlus}
var kfOnly = []string{ModelKF2VPlus}

const (
	tipAnySubject   = "Any subject works; pick an image where the subject stands out from the background"
	tipSinglePerson = "Single person, front-facing, half to full body"
	tipSingleFull   = "Single person, front-facing, full body"
	tipSingleAnimal = "Single person or animal, front-facing"
	tipTwoPeople    = "Two people facing the camera or each other, half or full body"
)

// EffectTemplates mirrors the remote service's template catalog.
var EffectTemplates = []EffectTemplate{
	// General effects (first frame)
	{ID: "squish", Name: "Squish", Template: "squish", Category: CategoryGeneral, SupportedModels: bothI2VModels, InputTip: tipAnySubject, Kind: KindImageToVideo},
	{ID: "rotation", Name: "Spin Around", Template: "rotation", Category: CategoryGeneral, SupportedModels: bothI2VModels, InputTip: tipAnySubject, Kind: KindImageToVideo},
	{ID: "poke", Name: "Poke", Template: "poke", Category: CategoryGeneral, SupportedModels: bothI2VModels, InputTip: tipAnySubject, Kind: KindImageToVideo},
	{ID: "inflate", Name: "Balloon Inflate", Template: "inflate", Category: CategoryGeneral, SupportedModels: bothI2VModels, InputTip: tipAnySubject, Kind: KindImageToVideo},
	{ID: "dissolve", Name: "Molecular Dissolve", Template: "dissolve", Category: CategoryGeneral, SupportedModels: bothI2VModels, InputTip: tipAnySubject, Kind: KindImageToVideo},
	{ID: "melt", Name: "Heat Melt", Template: "melt", Category: CategoryGeneral, SupportedModels: plusOnly, InputTip: tipAnySubject, Kind: KindImageToVideo},
	{ID: "icecream", Name: "Ice Cream Planet", Template: "icecream", Category: CategoryGeneral, SupportedModels: plusOnly, InputTip: tipAnySubject, Kind: KindImageToVideo},

	// Single-person effects (first frame)
	{ID: "carousel", Name: "Time Carousel", Template: "carousel", Category: CategorySingle, SupportedModels: bothI2VModels, InputTip: tipSinglePerson, Kind: KindImageToVideo},
	{ID: "singleheart", Name: "Heart Sign", Template: "singleheart", Category: CategorySingle, SupportedModels: bothI2VModels, InputTip: tipSinglePerson, Kind: KindImageToVideo},
	{ID: "dance1", Name: "Sway Dance", Template: "dance1", Category: CategorySingle, SupportedModels: plusOnly, InputTip: tipSinglePerson, Kind: KindImageToVideo},
	{ID: "dance2", Name: "Head Shake Dance", Template: "dance2", Category: CategorySingle, SupportedModels: plusOnly, InputTip: tipSingleFull, Kind: KindImageToVideo},
	{ID: "dance3", Name: "Star Dance", Template: "dance3", Category: CategorySingle, SupportedModels: plusOnly, InputTip: tipSingleFull, Kind: KindImageToVideo},
	{ID: "dance4", Name: "Finger Rhythm", Template: "dance4", Category: CategorySingle, SupportedModels: plusOnly, InputTip: tipSinglePerson, Kind: KindImageToVideo},
	{ID: "dance5", Name: "Dance Switch", Template: "dance5", Category: CategorySingle, SupportedModels: plusOnly, InputTip: tipSinglePerson, Kind: KindImageToVideo},
	{ID: "mermaid", Name: "Mermaid Awakening", Template: "mermaid", Category: CategorySingle, SupportedModels: plusOnly, InputTip: tipSinglePerson, Kind: KindImageToVideo},
	{ID: "graduation", Name: "Graduation", Template: "graduation", Category: CategorySingle, SupportedModels: plusOnly, InputTip: tipSinglePerson, Kind: KindImageToVideo},
	{ID: "dragon", Name: "Beast Chase", Template: "dragon", Category: CategorySingle, SupportedModels: plusOnly, InputTip: tipSinglePerson, Kind: KindImageToVideo},
	{ID: "money", Name: "Money Rain", Template: "money", Category: CategorySingle, SupportedModels: plusOnly, InputTip: tipSinglePerson, Kind: KindImageToVideo},
	{ID: "jellyfish", Name: "Jellyfish Drift", Template: "jellyfish", Category: CategorySingle, SupportedModels: plusOnly, InputTip: tipSinglePerson, Kind: KindImageToVideo},
	{ID: "pupil", Name: "Pupil Zoom", Template: "pupil", Category: CategorySingle, SupportedModels: plusOnly, InputTip: tipSinglePerson, Kind: KindImageToVideo},

	// Single person or animal (first frame)
	{ID: "flying", Name: "Magic Levitation", Template: "flying", Category: CategorySingleAnimal, SupportedModels: bothI2VModels, InputTip: tipSingleAnimal, Kind: KindImageToVideo},
	{ID: "rose", Name: "Give a Rose", Template: "rose", Category: CategorySingleAnimal, SupportedModels: bothI2VModels, InputTip: tipSingleAnimal, Kind: KindImageToVideo},
	{ID: "crystalrose", Name: "Crystal Rose", Template: "crystalrose", Category: CategorySingleAnimal, SupportedModels: bothI2VModels, InputTip: tipSingleAnimal, Kind: KindImageToVideo},

	// Two-person effects (first frame)
	{ID: "hug", Name: "Hug", Template: "hug", Category: CategoryDouble, SupportedModels: bothI2VModels, InputTip: tipTwoPeople, Kind: KindImageToVideo},
	{ID: "frenchkiss", Name: "Kiss", Template: "frenchkiss", Category: CategoryDouble, SupportedModels: bothI2VModels, InputTip: tipTwoPeople, Kind: KindImageToVideo},
	{ID: "coupleheart", Name: "Couple Heart", Template: "coupleheart", Category: CategoryDouble, SupportedModels: bothI2VModels, InputTip: tipTwoPeople, Kind: KindImageToVideo},

	// Single-person effects (first and last frame)
	{ID: "hanfu-1", Name: "Hanfu Transformation", Template: "hanfu-1", Category: CategoryKFSingle, SupportedModels: kfOnly, InputTip: tipSinglePerson, Kind: KindKeyframeToVideo},
	{ID: "solaron", Name: "Mecha Transformation", Template: "solaron", Category: CategoryKFSingle, SupportedModels: kfOnly, InputTip: tipSinglePerson, Kind: KindKeyframeToVideo},
	{ID: "magazine", Name: "Magazine Cover", Template: "magazine", Category: CategoryKFSingle, SupportedModels: kfOnly, InputTip: tipSinglePerson, Kind: KindKeyframeToVideo},
	{ID: "mech1", Name: "Mech Awakening", Template: "mech1", Category: CategoryKFSingle, SupportedModels: kfOnly, InputTip: tipSinglePerson, Kind: KindKeyframeToVideo},
	{ID: "mech2", Name: "Cyber Entrance", Template: "mech2", Category: CategoryKFSingle, SupportedModels: kfOnly, InputTip: tipSinglePerson, Kind: KindKeyframeToVideo},
}
