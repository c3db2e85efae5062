package repos

import (
  "encoding/json"
  "gorm.io/datatypes"
)

func marshalStringList(values []string) (datatypes.JSON, error) {
  if values == nil {
    values = []string{}
  }
  raw, err := json.Marshal(values)
  if err != nil {
    return nil, err
  }
  return datatypes.JSON(raw), nil
}
