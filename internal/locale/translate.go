package locale

// Pick returns the text matching the request language, defaulting to Portuguese.
func Pick(language, english, portuguese string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return portuguese
	}
	if portuguese != "" {
		return portuguese
	}
	return english
}

// Labels are the fixed UI strings of the blog.
type Labels struct {
	NotPublished string
	Loading      string
	LoadMore     string
	ExitPreview  string
	PreviousPost string
	NextPost     string
	Minutes      string
	NotFound     string
	LoadFailed   string
}

func LabelsFor(language string) Labels {
	return Labels{
		NotPublished: Pick(language, "Not published yet", "Não publicado"),
		Loading:      Pick(language, "Loading...", "Carregando..."),
		LoadMore:     Pick(language, "Load more posts", "Carregar mais posts"),
		ExitPreview:  Pick(language, "Exit preview mode", "Sair do modo Preview"),
		PreviousPost: Pick(language, "Previous post", "Post anterior"),
		NextPost:     Pick(language, "Next post", "Próximo post"),
		Minutes:      "min",
		NotFound:     Pick(language, "Post not found", "Post não encontrado"),
		LoadFailed:   Pick(language, "Could not load posts", "Não foi possível carregar os posts"),
	}
}
