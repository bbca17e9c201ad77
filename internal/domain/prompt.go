package domain

import (
	"fmt"
)

const scenePromptTemplate = "Put the person from the uploaded photo into the real place at %s. " +
	"Rebuild the scene as a photorealistic photograph taken at that exact location, " +
	"with its actual landmarks, architecture, terrain and typical weather. " +
	"Discard the original photo's background completely. " +
	"Keep the person's face, pose and clothing exactly as uploaded, " +
	"and blend light and shadow so the result looks like a genuine photo taken there."

// ScenePrompt builds the fixed instruction sent to the image service,
// with the coordinate embedded in degrees-minutes-seconds form.
func ScenePrompt(c Coordinate) string {
	return fmt.Sprintf(scenePromptTemplate, c.DMS())
}
