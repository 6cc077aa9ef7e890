package studio

import (
	"strings"
	"time"

	"github.com/pixelflowlabs/trendreel/internal/models"
)

// Template is a prefilled request to start a video from
type Template struct {
	Title       string
	Description string
	Request     models.VideoRequest
}

var templates = []Template{
	{
		Title:       "Product Showcase",
		Description: "A sleek video highlighting product features with dynamic transitions",
		Request: models.VideoRequest{
			ProductName: "EcoFresh Water Bottle",
			Description: "A sustainable, insulated water bottle that keeps drinks cold for 24 hours or hot for 12 hours. Made from recycled materials with a sleek modern design.",
			Scenes: "Scene 1: Close-up of bottle with water droplets, rotating slowly\n" +
				"Scene 2: Person hiking, taking a drink\n" +
				"Scene 3: Infographic showing insulation benefits\n" +
				"Scene 4: Product lineup in different colors\n" +
				"Scene 5: Logo and tagline 'Stay Fresh, Go Eco'",
		},
	},
	{
		Title:       "Testimonial Style",
		Description: "Customer-focused video highlighting benefits and satisfaction",
		Request: models.VideoRequest{
			ProductName: "DreamSleep Mattress",
			Description: "A premium memory foam mattress that adapts to your body shape for the perfect night's sleep. Features cooling technology and hypoallergenic materials.",
			Scenes: "Scene 1: Person waking up refreshed and stretching\n" +
				"Scene 2: Animation of mattress layers and technology\n" +
				"Scene 3: Split screen of peaceful sleep vs tossing and turning\n" +
				"Scene 4: Customer testimonial quotes appearing\n" +
				"Scene 5: Call to action with discount code",
		},
	},
	{
		Title:       "Tutorial/How-To",
		Description: "Step-by-step guide showing your product in action",
		Request: models.VideoRequest{
			ProductName: "BlendMaster Pro Blender",
			Description: "A powerful 1000W blender with 8 speed settings and preset programs for smoothies, soups, and crushing ice. Includes a digital display and touch controls.",
			Scenes: "Scene 1: Blender on kitchen counter with ingredients around it\n" +
				"Scene 2: Close-up of control panel as settings are selected\n" +
				"Scene 3: Ingredients being added to blender\n" +
				"Scene 4: Blending in action with smooth result\n" +
				"Scene 5: Final smoothie being poured and enjoyed",
		},
	},
}

// Templates returns copies of the built-in sample templates
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// FindTemplate matches a template by case-insensitive title prefix
func FindTemplate(name string) (Template, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Template{}, false
	}
	for _, t := range templates {
		if strings.HasPrefix(strings.ToLower(t.Title), name) {
			return t, true
		}
	}
	return Template{}, false
}

// StepInterval is how long each processing message stays on screen
const StepInterval = 2 * time.Second

// ProcessingSteps are shown in rotation while a video is generated
var ProcessingSteps = []string{
	"Analyzing product details...",
	"Generating scene concepts...",
	"Creating visual elements...",
	"Rendering transitions...",
	"Finalizing video output...",
}

// StepAt returns the processing message shown after elapsed time
func StepAt(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	return ProcessingSteps[int(elapsed/StepInterval)%len(ProcessingSteps)]
}
