package location

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/unicode/norm"

	"github.com/myhometown/missionary-import/internal/models"
)

const maxSuggestions = 3

// Index answers name lookups against the city and community reference lists.
// Names compare case-insensitively after trimming.
type Index struct {
	cities      []models.City
	communities []models.Community

	cityByID        map[string]models.City
	cityByName      map[string][]models.City
	communityByID   map[string]models.Community
	communityByName map[string][]models.Community
}

// Resolution is a successfully resolved community.
type Resolution struct {
	Community models.Community
	// CityID is the community's parent city, or "" when the parent is not
	// in the city list.
	CityID string
	// Fuzzy is set when the community was found by partial name match.
	Fuzzy bool
}

// NewIndex builds an index over the given reference lists.
func NewIndex(cities []models.City, communities []models.Community) *Index {
	idx := &Index{
		cities:          cities,
		communities:     communities,
		cityByID:        make(map[string]models.City, len(cities)),
		cityByName:      make(map[string][]models.City, len(cities)),
		communityByID:   make(map[string]models.Community, len(communities)),
		communityByName: make(map[string][]models.Community, len(communities)),
	}
	for _, c := range cities {
		idx.cityByID[c.ID] = c
		key := fold(c.Name)
		idx.cityByName[key] = append(idx.cityByName[key], c)
	}
	for _, c := range communities {
		idx.communityByID[c.ID] = c
		key := fold(c.Name)
		idx.communityByName[key] = append(idx.communityByName[key], c)
	}
	return idx
}

// Cities returns the indexed city list.
func (idx *Index) Cities() []models.City { return idx.cities }

// Communities returns the indexed community list.
func (idx *Index) Communities() []models.Community { return idx.communities }

// City returns the city with id.
func (idx *Index) City(id string) (models.City, bool) {
	c, ok := idx.cityByID[id]
	return c, ok
}

// Community returns the community with id and the id of its parent city.
func (idx *Index) Community(id string) (models.Community, string, bool) {
	c, ok := idx.communityByID[id]
	if !ok {
		return models.Community{}, "", false
	}
	return c, idx.parentID(c), true
}

// CityName returns the name of the city with id, or "".
func (idx *Index) CityName(id string) string {
	return idx.cityByID[id].Name
}

// CommunityName returns the name of the community with id, or "".
func (idx *Index) CommunityName(id string) string {
	return idx.communityByID[id].Name
}

// ResolveCity finds the city named name. Only exact (case-insensitive)
// matches resolve.
func (idx *Index) ResolveCity(name string) (models.City, error) {
	matches := idx.cityByName[fold(name)]
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return models.City{}, &NotFoundError{
			Kind:        KindCity,
			Name:        name,
			Suggestions: suggest(name, cityNames(idx.cities)),
		}
	default:
		states := make([]string, 0, len(matches))
		for _, c := range matches {
			states = append(states, c.Name+" ("+c.State+")")
		}
		return models.City{}, &AmbiguousError{Kind: KindCity, Name: name, Candidates: states}
	}
}

// ResolveCommunity finds the community named name.
//
// A single exact match resolves. Several exact matches (the same community
// name in different cities) are narrowed to those whose parent city is named
// inCity; inCity may be empty, in which case the name is ambiguous. With no
// exact match, a community whose name contains name resolves only when it
// is the single such community.
func (idx *Index) ResolveCommunity(name, inCity string) (Resolution, error) {
	key := fold(name)
	if key == "" {
		return Resolution{}, &NotFoundError{Kind: KindCommunity, Name: name}
	}

	exact := idx.communityByName[key]
	switch len(exact) {
	case 1:
		return idx.resolved(exact[0], false), nil
	case 0:
		return idx.resolvePartial(name, key)
	}

	parents := idx.parentNames(exact)
	if strings.TrimSpace(inCity) == "" {
		return Resolution{}, &AmbiguousError{Kind: KindCommunity, Name: name, Candidates: parents}
	}

	var inRequested []models.Community
	for _, c := range exact {
		if fold(idx.parentName(c)) == fold(inCity) {
			inRequested = append(inRequested, c)
		}
	}
	switch len(inRequested) {
	case 0:
		return Resolution{}, &NotInCityError{Name: name, City: inCity, FoundIn: parents}
	case 1:
		return idx.resolved(inRequested[0], false), nil
	default:
		return Resolution{}, &AmbiguousError{
			Kind:       KindCommunity,
			Name:       name,
			Candidates: idx.parentNames(inRequested),
		}
	}
}

func (idx *Index) resolvePartial(name, key string) (Resolution, error) {
	var partial []models.Community
	for _, c := range idx.communities {
		if strings.Contains(fold(c.Name), key) {
			partial = append(partial, c)
		}
	}

	switch len(partial) {
	case 0:
		return Resolution{}, &NotFoundError{
			Kind:        KindCommunity,
			Name:        name,
			Suggestions: suggest(name, communityNames(idx.communities)),
		}
	case 1:
		return idx.resolved(partial[0], true), nil
	default:
		names := make([]string, 0, len(partial))
		for _, c := range partial {
			names = append(names, c.Name)
		}
		return Resolution{}, &AmbiguousError{
			Kind:       KindCommunity,
			Name:       name,
			Candidates: dedupe(names),
			Partial:    true,
		}
	}
}

func (idx *Index) resolved(c models.Community, partial bool) Resolution {
	return Resolution{Community: c, CityID: idx.parentID(c), Fuzzy: partial}
}

// parentID returns the id of the community's city, looking it up by name
// when the community only carries the city name.
func (idx *Index) parentID(c models.Community) string {
	if c.CityID != "" {
		return c.CityID
	}
	if matches := idx.cityByName[fold(c.City)]; len(matches) > 0 && c.City != "" {
		return matches[0].ID
	}
	return ""
}

func (idx *Index) parentName(c models.Community) string {
	if c.CityID != "" {
		if city, ok := idx.cityByID[c.CityID]; ok {
			return city.Name
		}
	}
	return c.City
}

func (idx *Index) parentNames(cs []models.Community) []string {
	names := make([]string, 0, len(cs))
	for _, c := range cs {
		n := idx.parentName(c)
		if n == "" {
			n = "unknown city"
		}
		names = append(names, n)
	}
	return dedupe(names)
}

func fold(s string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(s)))
}

// suggest ranks candidate names close to name.
func suggest(name string, candidates []string) []string {
	ranks := fuzzy.RankFindNormalizedFold(strings.TrimSpace(name), candidates)
	sort.Sort(ranks)

	out := make([]string, 0, maxSuggestions)
	for _, r := range ranks {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, r.Target)
	}
	return dedupe(out)
}

func cityNames(cs []models.City) []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return names
}

func communityNames(cs []models.Community) []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return names
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
